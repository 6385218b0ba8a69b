package rollup

import (
	"github.com/matter-labs/zksync-sub001/priority"
	"github.com/matter-labs/zksync-sub001/pubdata"
	"github.com/matter-labs/zksync-sub001/types"
)

// CommitBlock validates and stores the next rollup block.
//
// The pubdata stream is decoded in full; every Deposit and FullExit in it
// must match the next unconsumed priority request in FIFO order, and every
// ChangePubKey must carry a valid authorization (a witness signature or a
// stored auth fact). Any failure rejects the whole block with no state
// change. On success the block's commitment is stored and its priority
// requests are reserved until verification.
//
// witness carries out-of-band authorization bytes for ChangePubKey
// operations, sliced per-op by witnessChunkSizes (one entry per
// ChangePubKey in pubdata order; a zero size selects the auth-fact path).
func (c *Chain) CommitBlock(validator types.Address, blockNumber uint32, feeAccount uint32, timestamp uint64, newRoot types.Hash, pubdataBytes, witness []byte, witnessChunkSizes []uint32) (types.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerExodusLocked()
	if c.exodus {
		return types.Hash{}, ErrExodusActive
	}
	if !c.validators.IsActiveValidator(validator) {
		return types.Hash{}, ErrNotValidator
	}
	if blockNumber != c.totalCommitted+1 {
		return types.Hash{}, ErrBlockOutOfOrder
	}
	if c.totalCommitted-c.totalVerified >= c.cfg.MaxUnverifiedBlocks {
		return types.Hash{}, ErrTooManyUnverified
	}
	if len(pubdataBytes)%pubdata.ChunkBytes != 0 {
		return types.Hash{}, ErrPubdataLength
	}

	ops, err := pubdata.WalkBlock(pubdataBytes)
	if err != nil {
		return types.Hash{}, err
	}

	var (
		priorityCount uint64
		credits       []balanceCredit
		cpkIndex      int
		witnessOffset int
	)
	for _, op := range ops {
		switch op := op.(type) {
		case *pubdata.DepositOp:
			if err := c.matchPriorityLocked(priorityCount, op, nil); err != nil {
				return types.Hash{}, err
			}
			priorityCount++

		case *pubdata.FullExitOp:
			if err := c.matchPriorityLocked(priorityCount, nil, op); err != nil {
				return types.Hash{}, err
			}
			priorityCount++
			if !op.Amount.IsZero() {
				credits = append(credits, balanceCredit{
					owner:  op.Owner,
					token:  op.TokenID,
					amount: op.Amount.Clone(),
				})
			}

		case *pubdata.PartialExitOp:
			credits = append(credits, balanceCredit{
				owner:  op.Recipient,
				token:  op.TokenID,
				amount: op.Amount.Clone(),
			})

		case *pubdata.ChangePubKeyOp:
			if cpkIndex >= len(witnessChunkSizes) {
				return types.Hash{}, ErrWitnessFormat
			}
			size := int(witnessChunkSizes[cpkIndex])
			cpkIndex++
			if witnessOffset+size > len(witness) {
				return types.Hash{}, ErrWitnessFormat
			}
			chunk := witness[witnessOffset : witnessOffset+size]
			witnessOffset += size
			if err := c.verifyChangePubKeyLocked(op, chunk); err != nil {
				return types.Hash{}, err
			}
		}
	}
	if cpkIndex != len(witnessChunkSizes) || witnessOffset != len(witness) {
		return types.Hash{}, ErrWitnessFormat
	}

	oldRoot := c.blocks[blockNumber-1].StateRoot
	commitment := blockCommitment(blockNumber, feeAccount, timestamp,
		c.cfg.TimestampedCommitments, oldRoot, newRoot, pubdataBytes)

	// Validation complete; mutate.
	blk := &Block{
		Number:            blockNumber,
		CommittedAtHeight: c.height.HeightNow(),
		Commitment:        commitment,
		StateRoot:         newRoot,
		Validator:         validator,
		Timestamp:         timestamp,
		PriorityOps:       priorityCount,
		credits:           credits,
	}
	c.blocks = append(c.blocks, blk)
	c.totalCommitted++
	if err := c.queue.ReserveCommitted(priorityCount); err != nil {
		// Unreachable: matching proved every request exists.
		c.blocks = c.blocks[:blockNumber]
		c.totalCommitted--
		return types.Hash{}, err
	}

	c.lg.Info("block committed",
		"number", blockNumber,
		"validator", validator,
		"priorityOps", priorityCount,
		"pubdataBytes", len(pubdataBytes))
	c.publish(EventBlockCommitted, BlockCommittedData{
		Number:     blockNumber,
		Commitment: commitment,
		StateRoot:  newRoot,
		Validator:  validator,
	})
	return commitment, nil
}

// matchPriorityLocked compares the Nth priority-typed operation of the
// block being committed against the Nth unconsumed queued request. Exactly
// one of depositOp and fullExitOp is non-nil.
func (c *Chain) matchPriorityLocked(n uint64, depositOp *pubdata.DepositOp, fullExitOp *pubdata.FullExitOp) error {
	req, ok := c.queue.PendingAt(n)
	if !ok {
		return ErrPriorityMismatch
	}
	switch {
	case depositOp != nil:
		if req.OpType != priority.Deposit {
			return ErrPriorityMismatch
		}
		dr, err := pubdata.DecodeDepositRequest(req.Payload)
		if err != nil || !dr.Matches(depositOp) {
			return ErrPriorityMismatch
		}
	case fullExitOp != nil:
		if req.OpType != priority.FullExit {
			return ErrPriorityMismatch
		}
		fr, err := pubdata.DecodeFullExitRequest(req.Payload)
		if err != nil || !fr.Matches(fullExitOp) {
			return ErrPriorityMismatch
		}
	}
	return nil
}
