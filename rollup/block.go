package rollup

import (
	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// NativeTokenID is the token id of the host chain's native asset.
const NativeTokenID uint16 = 0

// Block is the stored metadata of one committed rollup block. Blocks form
// a dense 1-indexed sequence; block 0 is the genesis record seeded at
// construction and never committed, verified, or reverted.
type Block struct {
	// Number is the rollup block number.
	Number uint32

	// CommittedAtHeight is the host height at which the block was
	// committed. Zero means not committed (only genesis).
	CommittedAtHeight uint64

	// Commitment is the hash bound to the proof system's public input.
	Commitment types.Hash

	// StateRoot is the rollup state root after this block.
	StateRoot types.Hash

	// Validator committed the block and collects its priority fees.
	Validator types.Address

	// Timestamp is the block's declared timestamp (zero when the chain
	// runs untimestamped commitments).
	Timestamp uint64

	// PriorityOps is the number of priority requests this block consumed.
	PriorityOps uint64

	// credits are the balance movements recorded at commit and applied
	// only when the block verifies. A reverted block never touches
	// balances.
	credits []balanceCredit
}

// balanceCredit is one deferred withdrawable-balance credit: the verify-
// time settlement of a PartialExit or FullExit decoded at commit time.
type balanceCredit struct {
	owner  types.Address
	token  uint16
	amount *uint256.Int
}
