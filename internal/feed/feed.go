// Package feed fans out repository mutation events to connected subscribers
// in near-real time. Each subscriber holds its own handle with a unique id
// and a bounded pending queue; events arrive in publish order, and events
// owned by the subscriber itself are never delivered.
package feed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/mkamran/campushub/internal/metrics"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/store"
)

// EventType classifies a mutation.
type EventType string

// Mutation event types.
const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one observed mutation on the lost/found store.
type Event struct {
	Type EventType            `json:"type"`
	Seq  uint64               `json:"seq"`
	Item *model.LostFoundItem `json:"item"`
}

// DefaultQueueSize bounds each subscriber's pending queue.
const DefaultQueueSize = 64

// Bus is the in-process publish/subscribe hub for mutation events.
type Bus struct {
	mu        sync.Mutex
	subs      map[string]*Subscription
	seq       uint64
	queueSize int
}

// NewBus creates a bus whose subscribers buffer at most queueSize pending
// events each. A non-positive size falls back to DefaultQueueSize.
func NewBus(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		subs:      make(map[string]*Subscription),
		queueSize: queueSize,
	}
}

// Publish fans the event out to every subscriber except the one(s) owned by
// the event's originating identity. Events are sequenced under the bus lock,
// so every subscriber observes them in the same (commit) order.
func (b *Bus) Publish(evType EventType, item *model.LostFoundItem) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	ev := Event{Type: evType, Seq: b.seq, Item: item}
	owner := store.NormalizeEmail(item.UserEmail)

	for _, sub := range b.subs {
		if sub.identity == owner {
			continue
		}
		sub.deliver(ev)
	}
}

// Subscribe registers a new subscriber for the given identity and returns its
// handle. Every call creates a fresh handle with a unique subscription id;
// handles are never shared and must be closed on teardown.
func (b *Bus) Subscribe(identity string) *Subscription {
	sub := &Subscription{
		id:       newSubscriptionID(),
		identity: store.NormalizeEmail(identity),
		bus:      b,
		ring:     NewRing[Event](b.queueSize),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	return sub
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	_, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()
	if ok {
		metrics.FeedSubscribers.Dec()
	}
}

// Subscription is one subscriber's live handle on the bus.
type Subscription struct {
	id       string
	identity string
	bus      *Bus

	mu     sync.Mutex
	ring   *Ring[Event]
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// ID returns the unique subscription id.
func (s *Subscription) ID() string { return s.id }

// deliver queues the event, evicting the oldest pending one when the queue
// is full. Delivery is best-effort: a slow subscriber loses its oldest
// events rather than growing without bound.
func (s *Subscription) deliver(ev Event) {
	s.mu.Lock()
	evicted := s.ring.Push(ev)
	s.mu.Unlock()

	if evicted {
		metrics.FeedEventsDropped.Inc()
	}
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is pending, the context is cancelled, or the
// subscription is closed. A closed subscription reports context.Canceled.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		ev, ok := s.ring.Pop()
		s.mu.Unlock()
		if ok {
			metrics.FeedEventsDelivered.Inc()
			return ev, nil
		}

		select {
		case <-s.notify:
		case <-s.done:
			return Event{}, context.Canceled
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Pending returns the number of queued events.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Len()
}

// Close releases the subscription. It is idempotent and must be called when
// the owning session ends; an unclosed subscription leaks a live handle.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.bus.unsubscribe(s.id)
	})
}

// newSubscriptionID returns a random id unique per client session.
func newSubscriptionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
