package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/domain/event"
	"chat-room/moderation"
)

var _ contract.Worker = (*ModerationWorker)(nil)

// ModerationWorker sits between the serializer and the broadcaster. It turns
// every MessagePosted into a SanitizedMessage and passes all other events
// through untouched. A single instance preserves the serializer's ordering
// end to end.
type ModerationWorker struct {
	moderator moderation.Moderator
	rawEvents chan domain.Event
	events    chan domain.Event
	telemetry chan event.Event
	log       *slog.Logger
}

func NewModerationWorker(moderator moderation.Moderator,
	rawEvents, events chan domain.Event,
	telemetry chan event.Event, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator: moderator,
		rawEvents: rawEvents,
		events:    events,
		telemetry: telemetry,
		log:       log,
	}
}

func (w *ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}

			out := e
			if posted, isMessage := e.(event.MessagePosted); isMessage {
				out = w.toSanitizedEvent(posted)
			}

			select {
			case <-ctx.Done():
				w.log.Debug("Stopping worker")
				return ctx.Err()
			case w.events <- out:
			}
		}
	}
}

func (w *ModerationWorker) toSanitizedEvent(evt event.MessagePosted) event.SanitizedMessage {
	info := whatlanggo.Detect(evt.Content)
	langCode := info.Lang.Iso6391()

	sanitized, foundWords := w.moderator.Censor(evt.Content)
	if len(foundWords) > 0 {
		w.log.Warn("Message censored",
			"author", evt.Author,
			"lang", langCode,
			"words", len(foundWords))
		w.report(event.MessageCensored{
			Author: evt.Author.String(),
			Lang:   langCode,
			Words:  foundWords,
		})
	}

	return event.SanitizedMessage{
		ID:            evt.ID,
		Author:        evt.Author,
		Content:       sanitized,
		Lang:          langCode,
		CensoredWords: foundWords,
		At:            evt.At,
	}
}

func (w *ModerationWorker) report(payload event.MessageCensored) {
	select {
	case w.telemetry <- event.Event{
		Type:      event.MessageCensoredType,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
}
