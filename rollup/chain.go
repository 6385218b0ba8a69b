// Package rollup implements the commitment/verification core of the rollup
// chain: the block ledger state machine (commit, verify, revert), the
// priority request lifecycle, pending-withdrawal accounting, and the exodus
// escape hatch.
//
// All state lives in a single Chain instance. Every mutating operation is
// serialized behind one mutex and is all-or-nothing: validation fully
// precedes mutation, matching the execute-or-revert transaction semantics
// of the hosting ledger.
package rollup

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/log"
	"github.com/matter-labs/zksync-sub001/priority"
	"github.com/matter-labs/zksync-sub001/types"
)

// Dependencies bundles the injected collaborators.
type Dependencies struct {
	Verifier   ProofVerifier
	Validators ValidatorRegistry
	Tokens     TokenRegistry
	Vault      AssetVault
	GasPrice   GasPriceSource // optional; nil disables deposit fees
	Height     HeightSource
	Logger     *log.Logger // optional
	Events     *EventBus   // optional
}

// Constructor errors.
var (
	ErrNilVerifier   = errors.New("rollup: cfg: proof verifier is required")
	ErrNilValidators = errors.New("rollup: cfg: validator registry is required")
	ErrNilHeight     = errors.New("rollup: cfg: height source is required")
)

// balanceKey addresses a withdrawable balance or an exited flag.
type balanceKey struct {
	owner types.Address
	token uint16
}

// pendingWithdrawal is one ring-buffer entry awaiting batched payout. The
// entry is a notification, not a reservation: the payout reads whatever
// balance remains at completion time.
type pendingWithdrawal struct {
	recipient types.Address
	token     uint16
}

// authKey addresses a stored change-pubkey auth fact.
type authKey struct {
	owner types.Address
	nonce uint32
}

// Chain is the rollup chain state machine.
type Chain struct {
	mu  sync.Mutex
	cfg Config

	verifier   ProofVerifier
	validators ValidatorRegistry
	tokens     TokenRegistry
	vault      AssetVault
	gasPrice   GasPriceSource
	height     HeightSource
	lg         *log.Logger
	events     *EventBus

	// blocks is dense by number; blocks[0] is genesis.
	blocks         []*Block
	totalCommitted uint32
	totalVerified  uint32

	queue *priority.Queue

	balances     map[balanceKey]*uint256.Int
	pending      []pendingWithdrawal
	firstPending uint64

	exodus    bool
	exited    map[balanceKey]bool
	authFacts map[authKey]types.Hash
}

// New creates a chain seeded with the externally computed genesis state
// root as block 0.
func New(cfg Config, genesisRoot types.Hash, deps Dependencies) (*Chain, error) {
	if deps.Verifier == nil {
		return nil, ErrNilVerifier
	}
	if deps.Validators == nil {
		return nil, ErrNilValidators
	}
	if deps.Height == nil {
		return nil, ErrNilHeight
	}
	lg := deps.Logger
	if lg == nil {
		lg = log.Discard()
	}
	return &Chain{
		cfg:        cfg,
		verifier:   deps.Verifier,
		validators: deps.Validators,
		tokens:     deps.Tokens,
		vault:      deps.Vault,
		gasPrice:   deps.GasPrice,
		height:     deps.Height,
		lg:         lg.Module("rollup"),
		events:     deps.Events,
		blocks:     []*Block{{Number: 0, StateRoot: genesisRoot}},
		queue:      priority.NewQueue(cfg.PriorityExpiration),
		balances:   make(map[balanceKey]*uint256.Int),
		exited:     make(map[balanceKey]bool),
		authFacts:  make(map[authKey]types.Hash),
	}, nil
}

// TotalBlocksCommitted returns the number of the newest committed block.
func (c *Chain) TotalBlocksCommitted() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCommitted
}

// TotalBlocksVerified returns the number of the newest verified block.
func (c *Chain) TotalBlocksVerified() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalVerified
}

// BlockAt returns a copy of the stored block metadata.
func (c *Chain) BlockAt(number uint32) (Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if number > c.totalCommitted {
		return Block{}, false
	}
	blk := *c.blocks[number]
	blk.credits = nil
	return blk, true
}

// ExodusMode reports whether the chain has entered exodus.
func (c *Chain) ExodusMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exodus
}

// FirstPriorityRequestID returns the id of the oldest open priority
// request.
func (c *Chain) FirstPriorityRequestID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.FirstID()
}

// OpenPriorityRequests returns the number of open priority requests.
func (c *Chain) OpenPriorityRequests() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.OpenCount()
}

// CommittedPriorityRequests returns the number of open priority requests
// already consumed by committed blocks.
func (c *Chain) CommittedPriorityRequests() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.CommittedCount()
}

// TriggerExodusIfNeeded evaluates the exodus conditions and flips the
// sticky flag when one holds. It returns the (possibly new) mode.
func (c *Chain) TriggerExodusIfNeeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggerExodusLocked()
	return c.exodus
}

// triggerExodusLocked flips exodus mode when either trigger holds:
// the oldest open priority request expired, or the oldest unverified
// block has been stale for twice the verification deadline without the
// backlog being reverted.
func (c *Chain) triggerExodusLocked() {
	if c.exodus {
		return
	}
	h := c.height.HeightNow()

	triggered := c.queue.ExpiredAt(h)
	if !triggered && c.totalVerified < c.totalCommitted {
		oldest := c.blocks[c.totalVerified+1]
		triggered = h >= oldest.CommittedAtHeight+2*c.cfg.ExpectVerificationIn
	}
	if !triggered {
		return
	}

	c.exodus = true
	c.lg.Warn("exodus mode activated",
		"height", h,
		"totalCommitted", c.totalCommitted,
		"totalVerified", c.totalVerified,
		"openPriorityRequests", c.queue.OpenCount())
	c.publish(EventExodusActivated, nil)
}

// publish emits an event if a bus is attached.
func (c *Chain) publish(t EventType, data interface{}) {
	if c.events != nil {
		c.events.Publish(t, data)
	}
}
