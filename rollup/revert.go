package rollup

// RevertBlocks deletes committed-but-unverified blocks from the top of the
// chain, newest first, after the oldest of them has outlived the
// verification deadline. Each deleted block's priority requests return to
// the unconsumed pool: they stay open and must be re-matched, in the same
// FIFO order, by whichever block commits them next.
//
// The work is bounded by maxBlocksToRevert; callers drain a large backlog
// with repeated calls. Reverting when nothing is committed beyond the
// verified boundary is a clean no-op.
func (c *Chain) RevertBlocks(maxBlocksToRevert uint32) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.totalCommitted == c.totalVerified {
		return 0, nil
	}
	oldest := c.blocks[c.totalVerified+1]
	if c.height.HeightNow() < oldest.CommittedAtHeight+c.cfg.ExpectVerificationIn {
		return 0, ErrRevertTooEarly
	}

	var reverted uint32
	for reverted < maxBlocksToRevert && c.totalCommitted > c.totalVerified {
		blk := c.blocks[c.totalCommitted]
		if err := c.queue.ReleaseCommitted(blk.PriorityOps); err != nil {
			return reverted, err
		}
		c.blocks = c.blocks[:c.totalCommitted]
		c.totalCommitted--
		reverted++
	}
	if reverted == 0 {
		return 0, nil
	}

	c.lg.Warn("blocks reverted",
		"reverted", reverted,
		"totalCommitted", c.totalCommitted,
		"totalVerified", c.totalVerified)
	c.publish(EventBlocksReverted, BlocksRevertedData{
		TotalCommitted: c.totalCommitted,
		TotalVerified:  c.totalVerified,
		Reverted:       reverted,
	})
	return reverted, nil
}
