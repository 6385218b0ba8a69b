package rollup

import "errors"

// Every rejection carries a stable machine-readable reason code as the
// message prefix. Callers and tests compare errors by identity.
var (
	// Sequencing errors.
	ErrBlockOutOfOrder   = errors.New("rollup: blk-order: block number is not the next in sequence")
	ErrTooManyUnverified = errors.New("rollup: blk-backpressure: too many committed blocks await verification")
	ErrRevertTooEarly    = errors.New("rollup: blk-fresh: oldest unverified block has not exceeded the verification deadline")

	// Format errors.
	ErrPubdataLength    = errors.New("rollup: fmt-chunks: pubdata length is not a multiple of the chunk size")
	ErrWitnessFormat    = errors.New("rollup: fmt-witness: witness chunk sizes do not tile the witness bytes")
	ErrPriorityMismatch = errors.New("rollup: fmt-priority: committed operation does not match the queued priority request")

	// Authorization errors.
	ErrNotValidator     = errors.New("rollup: auth-validator: caller is not an active validator")
	ErrChangePubKeyAuth = errors.New("rollup: auth-cpk: change-pubkey operation carries no valid authorization")
	ErrAuthFactExists   = errors.New("rollup: auth-fact: an auth fact for this account and nonce already exists")

	// Proof errors.
	ErrProofRejected     = errors.New("rollup: proof-block: block proof verification failed")
	ErrExitProofRejected = errors.New("rollup: proof-exit: exit proof verification failed")

	// Arithmetic errors.
	ErrInsufficientBalance = errors.New("rollup: bal-underflow: withdrawable balance is insufficient")
	ErrBalanceOverflow     = errors.New("rollup: bal-overflow: withdrawable balance would overflow")
	ErrDepositTooSmall     = errors.New("rollup: bal-fee: deposit amount does not cover the processing fee")
	ErrZeroAmount          = errors.New("rollup: bal-zero: amount must be positive")

	// Mode errors.
	ErrExodusActive  = errors.New("rollup: mode-exodus: operation is disabled in exodus mode")
	ErrNotInExodus   = errors.New("rollup: mode-normal: operation is available only in exodus mode")
	ErrAlreadyExited = errors.New("rollup: mode-exited: this owner and token already exited")

	// Transfer errors.
	ErrTransferFailed = errors.New("rollup: xfer: asset transfer failed")
)
