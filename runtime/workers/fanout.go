package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/domain/event"
)

var _ contract.Worker = (*FanoutWorker)(nil)

// FanoutWorker broadcasts room events to every registered sink.
//
// Delivery is best effort against a snapshot of the registry taken per
// event: a sink failing or timing out is reported back to the serializer as
// a leave and never blocks delivery to the remaining sinks. FanoutWorker is
// not a message broker; there are no retries and no durability.
type FanoutWorker struct {
	log         *slog.Logger
	registry    contract.IRegistry
	dispatcher  contract.IDispatcher
	events      chan domain.Event
	telemetry   chan event.Event
	sinkTimeout time.Duration
}

func NewFanoutWorker(log *slog.Logger,
	registry contract.IRegistry,
	dispatcher contract.IDispatcher,
	events chan domain.Event,
	telemetry chan event.Event,
	sinkTimeout time.Duration) *FanoutWorker {
	return &FanoutWorker{
		log:         log,
		registry:    registry,
		dispatcher:  dispatcher,
		events:      events,
		telemetry:   telemetry,
		sinkTimeout: sinkTimeout,
	}
}

func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to each currently registered sink. Sinks are
// visited sequentially so no connection ever observes two broadcasts
// interleaved; the per-connection write pump provides the exclusive write
// section behind each sink.
func (w *FanoutWorker) Fanout(ctx context.Context, evt domain.Event) {
	for _, session := range w.registry.SnapshotSessions() {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		err := session.Sink.Consume(sinkCtx, evt)
		cancel()
		if err == nil {
			continue
		}

		// A dead or saturated sink becomes an implicit leave; the
		// serializer makes it idempotent so a sink failing for several
		// events in a row is only removed once.
		w.log.Warn("Sink delivery failed, scheduling leave",
			"identity", session.Identity, "error", err)
		w.report(session.Identity)
		if err := w.dispatcher.Dispatch(domain.LeaveCommand{Identity: session.Identity}); err != nil {
			w.log.Error("Failed to schedule leave for dead sink",
				"identity", session.Identity, "error", err)
		}
	}
}

func (w *FanoutWorker) report(id domain.Identity) {
	select {
	case w.telemetry <- event.Event{
		Type:      event.DeliveryFailedType,
		CreatedAt: time.Now().UTC(),
		Payload:   event.DeliveryFailed{Identity: id.String()},
	}:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
}
