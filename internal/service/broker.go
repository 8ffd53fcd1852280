package service

import (
	"sync"

	"github.com/kmtracker/kmtracker/internal/model"
)

// DefaultSubscriberBuffer is the per-subscriber event buffer.
const DefaultSubscriberBuffer = 8

// HomeAddressBroker fans home address changes out to the subscribers of the
// affected user. Slow subscribers lose events instead of blocking Publish.
type HomeAddressBroker struct {
	buffer int

	mu   sync.RWMutex
	subs map[string]map[*subscription]struct{}
}

type subscription struct {
	ch   chan model.HomeAddressChanged
	once sync.Once
}

// NewHomeAddressBroker creates a broker with the given per-subscriber buffer.
func NewHomeAddressBroker(buffer int) *HomeAddressBroker {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &HomeAddressBroker{
		buffer: buffer,
		subs:   make(map[string]map[*subscription]struct{}),
	}
}

// Subscribe registers for ownerID's changes. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (b *HomeAddressBroker) Subscribe(ownerID string) (<-chan model.HomeAddressChanged, func()) {
	sub := &subscription{ch: make(chan model.HomeAddressChanged, b.buffer)}

	b.mu.Lock()
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = make(map[*subscription]struct{})
	}
	b.subs[ownerID][sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			b.mu.Lock()
			delete(b.subs[ownerID], sub)
			if len(b.subs[ownerID]) == 0 {
				delete(b.subs, ownerID)
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}

	return sub.ch, cancel
}

// Publish delivers ev to every subscriber of ev.OwnerID and returns how many
// received it.
func (b *HomeAddressBroker) Publish(ev model.HomeAddressChanged) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for sub := range b.subs[ev.OwnerID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions for ownerID.
func (b *HomeAddressBroker) Subscribers(ownerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[ownerID])
}
