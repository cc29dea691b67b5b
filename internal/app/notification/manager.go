// Package notification provides fan-out of playback events to subscribers.
//
// The player core is polled by its host; anything else that wants to react
// to playback (status lines, desktop notifiers, a future GUI shell)
// subscribes here instead of being wired into the core.
package notification

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ohmeg/vinylbox/internal/app/playback"
)

// Sink receives published events. A Send error marks the subscriber dead
// and it is dropped on the spot.
type Sink interface {
	Send(playback.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(playback.Event) error

// Send calls f(e).
func (f SinkFunc) Send(e playback.Event) error {
	return f(e)
}

type subscription struct {
	id   string
	sink Sink
}

// Manager manages event subscriptions and publishing.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a new subscriber and returns its subscription ID.
func (m *Manager) Subscribe(sink Sink) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{id: id, sink: sink}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Publish delivers an event to all subscribers. Subscribers whose Send
// fails are removed; delivery order across subscribers is unspecified.
func (m *Manager) Publish(e playback.Event) {
	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var dead []string
	for _, sub := range subs {
		if err := sub.sink.Send(e); err != nil {
			dead = append(dead, sub.id)
		}
	}

	if len(dead) > 0 {
		m.mu.Lock()
		for _, id := range dead {
			delete(m.subscriptions, id)
		}
		m.mu.Unlock()
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
