package rollup

// Config holds the chain's operating parameters. All heights are host-chain
// block heights.
type Config struct {
	// MaxUnverifiedBlocks bounds how many committed blocks may await
	// verification. Commits beyond the bound are rejected so a full revert
	// always fits within bounded batched calls.
	MaxUnverifiedBlocks uint32

	// ExpectVerificationIn is how long a committed block may stay
	// unverified before it becomes revertable.
	ExpectVerificationIn uint64

	// PriorityExpiration is how long a priority request may stay open
	// before its expiry trips exodus mode.
	PriorityExpiration uint64

	// FeeMultiplier scales the base gas estimate when charging the L1
	// processing fee on deposits and full exits.
	FeeMultiplier uint64

	// DepositBaseGas is the base gas estimate for processing a deposit.
	DepositBaseGas uint64

	// FullExitBaseGas is the base gas estimate for processing a full exit.
	FullExitBaseGas uint64

	// TimestampedCommitments folds the block timestamp into the commitment
	// hash. Off by default; the untimestamped shape is the canonical one.
	TimestampedCommitments bool
}

// DefaultConfig returns the production parameter set.
func DefaultConfig() Config {
	return Config{
		MaxUnverifiedBlocks:  100,
		ExpectVerificationIn: 250,
		PriorityExpiration:   250,
		FeeMultiplier:        2,
		DepositBaseGas:       179_000,
		FullExitBaseGas:      170_000,
	}
}
