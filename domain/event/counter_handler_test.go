package event

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-room/observability"
)

func TestCounterHandler_FeedsRoomCounters(t *testing.T) {
	req := require.New(t)
	counters := observability.NewCounters()
	handler := NewCounterHandler(slog.Default(), counters)

	now := time.Now().UTC()

	// When each telemetry kind goes through the handler
	handler.Handle(Event{Type: MessagePostedType, CreatedAt: now})
	handler.Handle(Event{Type: MessageCensoredType, CreatedAt: now,
		Payload: MessageCensored{Author: "bob", Lang: "en", Words: []string{"idiot"}}})
	handler.Handle(Event{Type: ParticipantType, CreatedAt: now,
		Payload: ParticipantChange{Joined: true, Size: 1}})
	handler.Handle(Event{Type: ParticipantType, CreatedAt: now,
		Payload: ParticipantChange{Joined: false, Size: 0}})
	handler.Handle(Event{Type: CommandDroppedType, CreatedAt: now,
		Payload: CommandDropped{Command: "post_message"}})
	handler.Handle(Event{Type: DeliveryFailedType, CreatedAt: now,
		Payload: DeliveryFailed{Identity: "bob"}})

	// Then the snapshot reflects every increment
	stats := counters.Snapshot()
	req.Equal(uint64(1), stats.MessagesPosted)
	req.Equal(uint64(1), stats.MessagesCensored)
	req.Equal(uint64(1), stats.Joins)
	req.Equal(uint64(1), stats.Leaves)
	req.Equal(uint64(1), stats.CommandsDropped)
	req.Equal(uint64(1), stats.DeliveryFailures)
	req.Equal(0, stats.RoomSize)
}

func TestCounterHandler_InvalidPayloadIsIgnored(t *testing.T) {
	req := require.New(t)
	counters := observability.NewCounters()
	handler := NewCounterHandler(slog.Default(), counters)

	// When a participant event carries the wrong payload type
	handler.Handle(Event{Type: ParticipantType, Payload: "garbage"})

	// Then no counter moves
	stats := counters.Snapshot()
	req.Zero(stats.Joins)
	req.Zero(stats.Leaves)
}
