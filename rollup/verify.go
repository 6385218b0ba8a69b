package rollup

import (
	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// VerifyBlock promotes the oldest committed-but-unverified block to
// verified after its correctness proof checks out.
//
// Verification is where funds move: the balance credits recorded at commit
// (PartialExit recipients, FullExit owners) are applied, a pending
// withdrawal is queued for each, the block's priority requests are settled
// with their fees paid to the committing validator, and the verified
// counter advances. Verification remains available in exodus mode; a
// proven block only reduces the stuck backlog.
func (c *Chain) VerifyBlock(validator types.Address, blockNumber uint32, proof []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerExodusLocked()
	if !c.validators.IsActiveValidator(validator) {
		return ErrNotValidator
	}
	if blockNumber != c.totalVerified+1 || blockNumber > c.totalCommitted {
		return ErrBlockOutOfOrder
	}
	blk := c.blocks[blockNumber]
	if !c.verifier.VerifyBlockProof(CommitmentToFieldElement(blk.Commitment), proof) {
		return ErrProofRejected
	}

	// Pre-validate every credit, the fee sum included, so the whole call
	// stays all-or-nothing.
	staged := make(map[balanceKey]*uint256.Int)
	stage := func(key balanceKey, amount *uint256.Int) error {
		cur, ok := staged[key]
		if !ok {
			cur = c.balanceOf(key)
		}
		next, overflow := new(uint256.Int).AddOverflow(cur, amount)
		if overflow {
			return ErrBalanceOverflow
		}
		staged[key] = next
		return nil
	}
	for _, cr := range blk.credits {
		if err := stage(balanceKey{cr.owner, cr.token}, cr.amount); err != nil {
			return err
		}
	}
	fees, err := c.queue.ReservedFees(blk.PriorityOps)
	if err != nil {
		return err
	}
	if !fees.IsZero() {
		// Priority fees accrue to the committing validator's native
		// withdrawable balance.
		if err := stage(balanceKey{blk.Validator, NativeTokenID}, fees); err != nil {
			return err
		}
	}

	if _, err := c.queue.SettleAndAdvance(blk.PriorityOps); err != nil {
		return err
	}

	for key, val := range staged {
		c.balances[key] = val
	}
	for _, cr := range blk.credits {
		c.pending = append(c.pending, pendingWithdrawal{recipient: cr.owner, token: cr.token})
		c.publish(EventPendingWithdrawal, PendingWithdrawalData{
			Recipient: cr.owner,
			TokenID:   cr.token,
		})
	}
	blk.credits = nil
	c.totalVerified++

	c.lg.Info("block verified",
		"number", blockNumber,
		"settledPriorityOps", blk.PriorityOps,
		"fees", fees)
	c.publish(EventBlockVerified, BlockVerifiedData{Number: blockNumber})
	return nil
}

// balanceOf returns the stored balance for a key, zero when absent. The
// returned value is never mutated in place.
func (c *Chain) balanceOf(key balanceKey) *uint256.Int {
	if b, ok := c.balances[key]; ok {
		return b
	}
	return uint256.NewInt(0)
}

// WithdrawableBalance returns the withdrawable balance of (owner, token).
func (c *Chain) WithdrawableBalance(owner types.Address, token uint16) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceOf(balanceKey{owner, token}).Clone()
}
