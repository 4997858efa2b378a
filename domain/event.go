//go:generate go run go.uber.org/mock/mockgen -source=event.go -destination=../mocks/mock_domain.go -package=mocks
package domain

import "context"

// Event is the closed set of facts the room emits. Concrete variants live in
// the event subpackage; transports dispatch on the concrete type.
type Event interface {
	EventName() string
}

// EventSink is one consumer of room events, usually the outbound side of a
// connection. Consume must not block past its context: a sink that cannot
// keep up reports an error and the room treats it as gone.
type EventSink interface {
	Consume(ctx context.Context, e Event) error
	Close() error
}
