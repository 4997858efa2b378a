// Package transport carries the room over websockets: per-connection sinks,
// read/write pumps, rate limiting, and the HTTP surface.
package transport

import (
	"context"
	"sync"

	"chat-room/domain"
	"chat-room/errors"
)

var _ domain.EventSink = (*WsSink)(nil)

// WsSink buffers room events for one connection's write pump. Consume is
// called by the broadcaster and must never block on a slow reader: a full
// buffer returns ErrQueueFull, which the broadcaster converts into a leave.
type WsSink struct {
	events chan domain.Event

	mu     sync.Mutex
	closed bool
}

func NewWsSink(buffer int) *WsSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &WsSink{events: make(chan domain.Event, buffer)}
}

// Events exposes the buffered stream to the write pump. The channel closes
// when the sink is closed.
func (s *WsSink) Events() <-chan domain.Event {
	return s.events
}

func (s *WsSink) Consume(ctx context.Context, e domain.Event) error {
	// The lock spans the send so Close can never close the channel
	// between the closed check and the enqueue.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSinkClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.events <- e:
		return nil
	default:
		return errors.ErrQueueFull
	}
}

// Close is idempotent; the serializer closes on leave and the connection
// closes on teardown, whichever comes first wins.
func (s *WsSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}
