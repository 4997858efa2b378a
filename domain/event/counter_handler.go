package event

import (
	"log/slog"

	"chat-room/errors"
	"chat-room/observability"
)

// CounterHandler feeds room counters from telemetry events.
// It is triggered for message, membership, drop, and delivery events.
type CounterHandler struct {
	log      *slog.Logger
	counters *observability.Counters
}

func NewCounterHandler(log *slog.Logger, counters *observability.Counters) *CounterHandler {
	return &CounterHandler{log: log, counters: counters}
}

func (h *CounterHandler) Handle(event Event) {
	switch event.Type {
	case MessagePostedType:
		h.counters.IncrMessagesPosted()
	case MessageCensoredType:
		if _, ok := event.Payload.(MessageCensored); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counters.IncrMessagesCensored()
	case ParticipantType:
		payload, ok := event.Payload.(ParticipantChange)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		if payload.Joined {
			h.counters.IncrJoins()
		} else {
			h.counters.IncrLeaves()
		}
		h.counters.SetRoomSize(payload.Size)
	case CommandDroppedType:
		h.counters.IncrCommandsDropped()
	case DeliveryFailedType:
		h.counters.IncrDeliveryFailures()
	}
}
