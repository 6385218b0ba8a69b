// Package priority implements the FIFO queue of pending priority requests:
// L1-initiated Deposit and FullExit actions that committed blocks must
// consume strictly in creation order, each carrying an expiration height
// past which the chain falls into exodus mode.
package priority

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/pubdata"
	"github.com/matter-labs/zksync-sub001/types"
)

// OpType identifies the kind of priority request.
type OpType uint8

const (
	// Deposit funds an L2 account from L1.
	Deposit OpType = 1
	// FullExit drains an L2 account's token balance back to L1.
	FullExit OpType = 2
)

// String returns the name of the op type.
func (t OpType) String() string {
	switch t {
	case Deposit:
		return "Deposit"
	case FullExit:
		return "FullExit"
	default:
		return "Unknown"
	}
}

// Queue errors.
var (
	ErrReserveOverflow  = errors.New("priority: reserving more requests than are open")
	ErrReleaseUnderflow = errors.New("priority: releasing more requests than are reserved")
	ErrSettleOverflow   = errors.New("priority: settling more requests than are reserved")
	ErrFeeOverflow      = errors.New("priority: settled fee total overflows")
)

// Request is one queued priority operation. Ids are assigned consecutively
// and never reused.
type Request struct {
	ID               uint64
	OpType           OpType
	Payload          []byte // encoded DepositRequest or FullExitRequest
	ExpirationHeight uint64 // host height past which the request triggers exodus
	Fee              *uint256.Int
}

// Queue is the priority request FIFO. Requests live in a slice arena
// indexed by id minus a floor offset; settled or cancelled entries are
// tombstoned and the floor advanced, releasing memory as the head moves.
//
// The queue is not self-synchronizing: the owning chain serializes all
// access behind its own lock.
type Queue struct {
	expiration uint64 // heights a request stays valid after enqueue

	firstID   uint64 // id of the oldest live request
	open      uint64 // live requests: [firstID, firstID+open)
	committed uint64 // prefix of open already consumed by committed blocks

	arena      []*Request
	arenaFloor uint64 // id of arena[0]
}

// NewQueue creates an empty queue whose requests expire the given number
// of host heights after enqueue.
func NewQueue(expiration uint64) *Queue {
	return &Queue{expiration: expiration}
}

// FirstID returns the id of the oldest live request. When the queue is
// empty it is the id the next request will receive.
func (q *Queue) FirstID() uint64 { return q.firstID }

// OpenCount returns the number of live requests.
func (q *Queue) OpenCount() uint64 { return q.open }

// CommittedCount returns how many live requests are reserved by committed
// but not yet verified blocks.
func (q *Queue) CommittedCount() uint64 { return q.committed }

// Enqueue appends a request, assigning the next consecutive id. The
// request expires at currentHeight plus the queue's expiration window.
func (q *Queue) Enqueue(op OpType, payload []byte, fee *uint256.Int, currentHeight uint64) *Request {
	if fee == nil {
		fee = uint256.NewInt(0)
	}
	req := &Request{
		ID:               q.firstID + q.open,
		OpType:           op,
		Payload:          payload,
		ExpirationHeight: currentHeight + q.expiration,
		Fee:              fee,
	}
	q.arena = append(q.arena, req)
	q.open++
	return req
}

// Request returns the live request with the given id.
func (q *Queue) Request(id uint64) (*Request, bool) {
	if id < q.firstID || id >= q.firstID+q.open {
		return nil, false
	}
	req := q.arena[id-q.arenaFloor]
	return req, req != nil
}

// Oldest returns the request at the head of the queue.
func (q *Queue) Oldest() (*Request, bool) {
	return q.Request(q.firstID)
}

// PendingAt returns the Nth request not yet reserved by any committed
// block, in FIFO order. Block commitment matches its priority-typed
// operations against PendingAt(0), PendingAt(1), ... in pubdata order.
func (q *Queue) PendingAt(n uint64) (*Request, bool) {
	return q.Request(q.firstID + q.committed + n)
}

// ReserveCommitted marks the next n pending requests as consumed by a
// newly committed block. The requests stay live until that block verifies.
func (q *Queue) ReserveCommitted(n uint64) error {
	if q.committed+n > q.open {
		return ErrReserveOverflow
	}
	q.committed += n
	return nil
}

// ReleaseCommitted returns n reserved requests to the pending pool. Block
// revert uses it; the requests remain valid and re-matchable.
func (q *Queue) ReleaseCommitted(n uint64) error {
	if n > q.committed {
		return ErrReleaseUnderflow
	}
	q.committed -= n
	return nil
}

// ReservedFees sums the fees of the n oldest requests without consuming
// them. The sum is checked; a total past 2^256-1 returns ErrFeeOverflow.
func (q *Queue) ReservedFees(n uint64) (*uint256.Int, error) {
	if n > q.committed {
		return nil, ErrSettleOverflow
	}
	total := uint256.NewInt(0)
	for i := uint64(0); i < n; i++ {
		idx := q.firstID - q.arenaFloor + i
		req := q.arena[idx]
		if req == nil {
			continue
		}
		var overflow bool
		if total, overflow = total.AddOverflow(total, req.Fee); overflow {
			return nil, ErrFeeOverflow
		}
	}
	return total, nil
}

// SettleAndAdvance deletes the n oldest requests and returns the sum of
// their fees. Only reserved requests settle: a block's verification
// settles exactly the requests its commit reserved. The queue is left
// untouched on any error, including a fee-sum overflow.
func (q *Queue) SettleAndAdvance(n uint64) (*uint256.Int, error) {
	total, err := q.ReservedFees(n)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		q.arena[q.firstID-q.arenaFloor] = nil
		q.firstID++
	}
	q.open -= n
	q.committed -= n
	q.compact()
	return total, nil
}

// CancelExpiredDeposits walks up to limit requests from the head of the
// queue, refunding Deposit requests through the callback and dropping
// FullExit requests outright (their exit amount was never escrowed). It
// returns the number of requests removed; callers invoke it repeatedly
// until it returns zero to drain a large backlog with bounded work per
// call.
//
// Cancellation ignores the committed watermark: in exodus mode no
// committed-but-unverified block will ever verify.
func (q *Queue) CancelExpiredDeposits(limit uint64, refund func(to types.Address, token uint16, amount *uint256.Int)) uint64 {
	var done uint64
	for done < limit && q.open > 0 {
		idx := q.firstID - q.arenaFloor
		req := q.arena[idx]
		if req != nil && req.OpType == Deposit {
			if dr, err := pubdata.DecodeDepositRequest(req.Payload); err == nil && refund != nil {
				refund(dr.Sender, dr.TokenID, dr.Amount)
			}
		}
		q.arena[idx] = nil
		q.firstID++
		q.open--
		if q.committed > 0 {
			q.committed--
		}
		done++
	}
	q.compact()
	return done
}

// ExpiredAt reports whether the oldest live request has passed its
// expiration at the given host height.
func (q *Queue) ExpiredAt(height uint64) bool {
	head, ok := q.Oldest()
	if !ok {
		return false
	}
	return head.ExpirationHeight != 0 && height >= head.ExpirationHeight
}

// compact releases tombstoned head space once the floor lags the head.
func (q *Queue) compact() {
	lag := q.firstID - q.arenaFloor
	if lag < 64 {
		return
	}
	q.arena = append([]*Request(nil), q.arena[lag:]...)
	q.arenaFloor = q.firstID
}
