package rollup

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/priority"
	"github.com/matter-labs/zksync-sub001/types"
)

// EventType identifies the kind of event published by the chain.
type EventType string

// Chain events. Off-chain observers (provers, watchtowers, exit tooling)
// track the chain through these.
const (
	EventBlockCommitted     EventType = "block.committed"
	EventBlockVerified      EventType = "block.verified"
	EventBlocksReverted     EventType = "block.reverted"
	EventNewPriorityRequest EventType = "priority.new"
	EventPendingWithdrawal  EventType = "withdrawal.pending"
	EventExodusActivated    EventType = "exodus.activated"
)

// BlockCommittedData accompanies EventBlockCommitted.
type BlockCommittedData struct {
	Number     uint32
	Commitment types.Hash
	StateRoot  types.Hash
	Validator  types.Address
}

// BlockVerifiedData accompanies EventBlockVerified.
type BlockVerifiedData struct {
	Number uint32
}

// BlocksRevertedData accompanies EventBlocksReverted.
type BlocksRevertedData struct {
	TotalCommitted uint32
	TotalVerified  uint32
	Reverted       uint32
}

// NewPriorityRequestData accompanies EventNewPriorityRequest. Provers rely
// on it to learn about deposits they must include.
type NewPriorityRequestData struct {
	ID               uint64
	OpType           priority.OpType
	Payload          []byte
	ExpirationHeight uint64
	Fee              *uint256.Int
}

// PendingWithdrawalData accompanies EventPendingWithdrawal.
type PendingWithdrawalData struct {
	Recipient types.Address
	TokenID   uint16
}

// Event is a message published on the event bus.
type Event struct {
	Type      EventType
	Data      interface{}
	Timestamp time.Time
}

// Subscription represents a subscription to one or more event types on the
// EventBus.
type Subscription struct {
	id     uint64
	types  map[EventType]struct{}
	ch     chan Event
	bus    *EventBus
	closed atomic.Bool
}

// Chan returns a read-only channel that receives events matching the
// subscription's event types.
func (s *Subscription) Chan() <-chan Event {
	return s.ch
}

// Unsubscribe removes this subscription from the event bus and closes the
// underlying channel. It is safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.Unsubscribe(s)
	}
}

// EventBus provides publish/subscribe notification of chain transitions.
// All methods are safe for concurrent use.
type EventBus struct {
	mu         sync.RWMutex
	subs       map[uint64]*Subscription
	nextID     uint64
	bufferSize int
}

// NewEventBus creates a new EventBus. bufferSize controls the channel
// buffer for each subscription; use 0 for unbuffered channels.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &EventBus{
		subs:       make(map[uint64]*Subscription),
		bufferSize: bufferSize,
	}
}

// Subscribe creates a subscription that receives events of the given type.
func (eb *EventBus) Subscribe(eventType EventType) *Subscription {
	return eb.SubscribeMultiple(eventType)
}

// SubscribeMultiple creates a subscription that receives events matching
// any of the given types.
func (eb *EventBus) SubscribeMultiple(eventTypes ...EventType) *Subscription {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	typeSet := make(map[EventType]struct{}, len(eventTypes))
	for _, t := range eventTypes {
		typeSet[t] = struct{}{}
	}
	sub := &Subscription{
		id:    eb.nextID,
		types: typeSet,
		ch:    make(chan Event, eb.bufferSize),
		bus:   eb,
	}
	eb.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the given subscription from the bus and closes its
// channel. Safe to call multiple times or with nil.
func (eb *EventBus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	if !sub.closed.CompareAndSwap(false, true) {
		return
	}
	eb.mu.Lock()
	delete(eb.subs, sub.id)
	eb.mu.Unlock()
	close(sub.ch)
}

// Publish sends an event to all matching subscribers without blocking. A
// subscriber whose channel is full misses the event; the chain never
// stalls on a slow observer.
func (eb *EventBus) Publish(eventType EventType, data interface{}) {
	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, sub := range eb.subs {
		if sub.closed.Load() {
			continue
		}
		if _, ok := sub.types[eventType]; ok {
			select {
			case sub.ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscriptions for the given
// event type.
func (eb *EventBus) SubscriberCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	count := 0
	for _, sub := range eb.subs {
		if sub.closed.Load() {
			continue
		}
		if _, ok := sub.types[eventType]; ok {
			count++
		}
	}
	return count
}
