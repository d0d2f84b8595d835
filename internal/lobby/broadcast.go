package lobby

import (
	"log"
	"sync"

	"skirmish/internal/game"
)

// Broadcaster fans events out to every subscription. Delivery never
// blocks the publisher: a subscription whose buffer is full misses the
// event.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
	logger *log.Logger
}

// Subscription receives events published after it was created.
type Subscription struct {
	id     uint64
	ch     chan game.Event
	parent *Broadcaster
}

// NewBroadcaster creates a broadcaster whose subscriptions buffer up to
// buffer events.
func NewBroadcaster(buffer int, logger *log.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{
		subs:   make(map[uint64]*Subscription),
		nextID: 1,
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe returns a new subscription. The initial events are queued
// ahead of anything published later.
func (b *Broadcaster) Subscribe(initial ...game.Event) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		id:     b.nextID,
		ch:     make(chan game.Event, max(b.buffer, len(initial))),
		parent: b,
	}
	b.nextID++
	for _, ev := range initial {
		sub.ch <- ev
	}
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers ev to every subscription and returns how many
// received it.
func (b *Broadcaster) Publish(ev game.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for id, sub := range b.subs {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			// Channel full, skip
			b.logger.Printf("Could not deliver %s to subscription %d", ev.Kind, id)
		}
	}
	return delivered
}

// Len returns the number of live subscriptions.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Later subscriptions are born closed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}

// Events is closed when the subscription or its broadcaster is closed.
func (s *Subscription) Events() <-chan game.Event {
	return s.ch
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	b := s.parent
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	close(s.ch)
}
