// Package projection builds local read models from observed room events.
// It does not emit events or interact with transports.
package projection

import (
	"context"
	"sync"

	"chat-room/domain"
	"chat-room/domain/event"
)

var _ domain.EventSink = (*Timeline)(nil)

// Timeline accumulates the sanitized messages one observer has seen, in
// delivery order. It doubles as an in-process EventSink for the terminal
// client and for tests.
type Timeline struct {
	mu       sync.Mutex
	messages []domain.Message
	users    []domain.Identity
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Consume(_ context.Context, e domain.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt := e.(type) {
	case event.SanitizedMessage:
		t.messages = append(t.messages, domain.Message{
			ID:        evt.ID,
			Sender:    evt.Author,
			Content:   evt.Content,
			CreatedAt: evt.At,
		})
	case event.PresenceChanged:
		t.users = append([]domain.Identity(nil), evt.Users...)
	}
	return nil
}

func (t *Timeline) Close() error {
	return nil
}

// Messages returns a copy of the accumulated messages.
func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message(nil), t.messages...)
}

// Users returns the last presence snapshot observed.
func (t *Timeline) Users() []domain.Identity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Identity(nil), t.users...)
}
