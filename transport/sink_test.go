package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-room/domain/event"
	"chat-room/errors"
)

func TestWsSink_ConsumeAndDrain(t *testing.T) {
	req := require.New(t)
	sink := NewWsSink(4)
	evt := event.SanitizedMessage{Content: "hello"}

	// When an event is consumed
	req.NoError(sink.Consume(context.Background(), evt))

	// Then the write pump can drain it
	got := <-sink.Events()
	req.Equal(evt, got)
}

func TestWsSink_FullBufferRejectsWithoutBlocking(t *testing.T) {
	req := require.New(t)
	sink := NewWsSink(2)

	// Given a reader that never drains
	req.NoError(sink.Consume(context.Background(), event.SanitizedMessage{Content: "1"}))
	req.NoError(sink.Consume(context.Background(), event.SanitizedMessage{Content: "2"}))

	// When one more event arrives
	err := sink.Consume(context.Background(), event.SanitizedMessage{Content: "3"})

	// Then the broadcaster gets an immediate rejection
	req.ErrorIs(err, errors.ErrQueueFull)
}

func TestWsSink_ConsumeAfterClose(t *testing.T) {
	req := require.New(t)
	sink := NewWsSink(4)

	req.NoError(sink.Close())

	err := sink.Consume(context.Background(), event.SanitizedMessage{Content: "late"})
	req.ErrorIs(err, errors.ErrSinkClosed)
}

func TestWsSink_CloseIsIdempotentAndEndsStream(t *testing.T) {
	req := require.New(t)
	sink := NewWsSink(4)
	req.NoError(sink.Consume(context.Background(), event.SanitizedMessage{Content: "last"}))

	// When the serializer and the connection both close the sink
	req.NoError(sink.Close())
	req.NoError(sink.Close())

	// Then buffered events still drain before the stream ends
	_, open := <-sink.Events()
	req.True(open)
	_, open = <-sink.Events()
	req.False(open)
}
