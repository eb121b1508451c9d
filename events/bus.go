package events

import (
	// Go Internal Packages
	"sync"
	"time"

	// External Packages
	"github.com/google/uuid"
)

// Change announces that the record with the given reference number was just
// created or updated by the reconciler. Subscribers typically use it to
// apply a transient visual highlight.
type Change struct {
	ReferenceNo string
	At          time.Time
}

// Bus is an in-process publish/subscribe channel for working-set changes,
// scoped to whoever holds it. Slow subscribers drop changes rather than
// block the reconcile path.
type Bus struct {
	mu     sync.RWMutex
	closed bool
	buffer int
	subs   map[string]chan Change
}

func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		buffer: buffer,
		subs:   make(map[string]chan Change),
	}
}

// Subscribe registers a new subscriber and returns its handle and channel.
// The channel is closed on Unsubscribe or Close.
func (b *Bus) Subscribe() (string, <-chan Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Change, b.buffer)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the change to every subscriber that has room for it.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
