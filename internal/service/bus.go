package service

import "sync"

// Event represents a registry mutation or lifecycle signal.
type Event struct {
	Resource string // partition name, e.g. "uploaded", "repo"
	Action   string // "created", "updated", "deleted", "ready"
	ID       string // entry id; empty for lifecycle signals
}

// ReadyAction marks the one-shot "repo layers ready" notification fired
// after the full preload attempt completes.
const ReadyAction = "ready"

// EventBus is a simple fan-out pub/sub for registry events. Analysis and
// UI collaborators subscribe to learn about layer changes and readiness.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
