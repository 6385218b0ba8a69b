package rollup

import (
	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// The core treats proof systems, governance, and asset transfer as
// injected collaborators behind narrow interfaces. It never inspects
// their internals.

// ProofVerifier gates block verification and exodus exits.
type ProofVerifier interface {
	// VerifyBlockProof checks a correctness proof against a block
	// commitment (masked to the proof system's scalar field by the
	// caller via CommitmentToFieldElement).
	VerifyBlockProof(commitment types.Hash, proof []byte) bool

	// VerifyExitProof checks a balance-inclusion proof against the last
	// verified state root during exodus.
	VerifyExitProof(root types.Hash, owner types.Address, tokenID uint16, amount *uint256.Int, proof []byte) bool
}

// ValidatorRegistry answers whether an address may commit and verify
// blocks. Governance owns the set.
type ValidatorRegistry interface {
	IsActiveValidator(addr types.Address) bool
}

// TokenRegistry resolves between L1 token contract addresses and rollup
// token ids. Token id 0 is the native asset and has no contract address.
type TokenRegistry interface {
	ResolveToken(addr types.Address) (uint16, error)
	TokenAddress(tokenID uint16) (types.Address, error)
}

// AssetVault performs the actual value transfers out of the rollup's
// custody. Ether/ERC-20 mechanics live entirely behind it.
type AssetVault interface {
	TransferNative(to types.Address, amount *uint256.Int) error
	TransferToken(token types.Address, to types.Address, amount *uint256.Int) error
}

// GasPriceSource supplies the current host gas price for the deposit fee
// model. A nil source means fees are not charged.
type GasPriceSource interface {
	GasPrice() *uint256.Int
}

// HeightSource supplies the current host-chain block height. Expirations,
// staleness, and exodus triggers all measure against it.
type HeightSource interface {
	HeightNow() uint64
}

// HeightFunc adapts a function to the HeightSource interface.
type HeightFunc func() uint64

// HeightNow implements HeightSource.
func (f HeightFunc) HeightNow() uint64 { return f() }
