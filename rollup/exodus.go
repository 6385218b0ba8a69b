package rollup

import (
	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// Exodus mode is the chain's escape hatch: once the validator set stops
// processing blocks in time, users recover their funds without operator
// cooperation. The flag is sticky; there is no way back to normal
// operation.

// CancelOutstandingDeposits drains up to n open priority requests during
// exodus. Expired deposits refund their L1 sender's withdrawable balance;
// full-exit requests are dropped (nothing was escrowed for them). The call
// is resumable: repeat it until the queue is empty.
func (c *Chain) CancelOutstandingDeposits(n uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerExodusLocked()
	if !c.exodus {
		return 0, ErrNotInExodus
	}
	done := c.queue.CancelExpiredDeposits(n, func(to types.Address, token uint16, amount *uint256.Int) {
		if err := c.creditLocked(to, token, amount); err != nil {
			// An overflowing refund cannot abort the drain; the request
			// is consumed either way.
			c.lg.Error("deposit refund overflowed withdrawable balance",
				"to", to, "tokenId", token)
		}
	})
	if done > 0 {
		c.lg.Info("outstanding deposits cancelled", "count", done)
	}
	return done, nil
}

// Exit credits a withdrawable balance during exodus against a balance-
// inclusion proof of the last verified state root. Each (owner, token)
// pair exits at most once.
func (c *Chain) Exit(owner types.Address, tokenID uint16, amount *uint256.Int, proof []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerExodusLocked()
	if !c.exodus {
		return ErrNotInExodus
	}
	key := balanceKey{owner, tokenID}
	if c.exited[key] {
		return ErrAlreadyExited
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	root := c.blocks[c.totalVerified].StateRoot
	if !c.verifier.VerifyExitProof(root, owner, tokenID, amount, proof) {
		return ErrExitProofRejected
	}
	if err := c.creditLocked(owner, tokenID, amount); err != nil {
		return err
	}
	c.exited[key] = true

	c.lg.Info("exodus exit", "owner", owner, "tokenId", tokenID, "amount", amount)
	return nil
}
