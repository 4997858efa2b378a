package workers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/domain/event"
	"chat-room/errors"
)

// Ensure *RouterWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*RouterWorker)(nil)

// RouterWorker is the room serializer. Exactly one instance runs per room:
// it is the only goroutine that mutates the registry, so every join, leave,
// and message applies in one total order. Events derived from the same
// command are emitted in a fixed sub-order (announcement first, then the
// presence snapshot reflecting the change).
type RouterWorker struct {
	registry  contract.IRegistry
	commands  chan domain.Command
	events    chan domain.Event
	telemetry chan event.Event
	log       *slog.Logger
}

func NewRouterWorker(
	registry contract.IRegistry,
	commands chan domain.Command,
	events chan domain.Event,
	telemetry chan event.Event,
	log *slog.Logger) *RouterWorker {
	return &RouterWorker{
		registry:  registry,
		commands:  commands,
		events:    events,
		telemetry: telemetry,
		log:       log,
	}
}

func (w *RouterWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if err := w.apply(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

// apply executes one command against the registry and emits the derived
// events. Only a canceled context is a real error; every domain-level
// rejection is resolved here (replied to the caller or silently dropped).
func (w *RouterWorker) apply(ctx context.Context, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.JoinCommand:
		return w.handleJoin(ctx, c)
	case domain.PostMessageCommand:
		return w.handlePost(ctx, c)
	case domain.LeaveCommand:
		return w.handleLeave(ctx, c)
	default:
		w.log.Warn("Unknown command dropped", "command", cmd.CommandName())
		return nil
	}
}

func (w *RouterWorker) handleJoin(ctx context.Context, cmd domain.JoinCommand) error {
	// The transport already normalizes; re-validate anyway, the registry
	// invariant must not depend on client-side checks.
	id := domain.NormalizeIdentity(cmd.Identity.String())
	if id.IsEmpty() {
		reply(cmd.Reply, errors.ErrEmptyIdentity)
		return nil
	}

	session, err := w.registry.Register(id, cmd.Sink)
	reply(cmd.Reply, err)
	if err != nil {
		// Rejection is unicast to the offending connection only,
		// nothing reaches the room.
		w.log.Info("Join rejected", "identity", id, "error", err)
		return nil
	}

	w.log.Info("Participant joined", "identity", id, "room_size", w.registry.Size())
	if err := w.emit(ctx, event.ParticipantJoined{Identity: id, At: session.JoinedAt}); err != nil {
		return err
	}
	if err := w.emitPresence(ctx); err != nil {
		return err
	}
	w.report(event.ParticipantType, event.ParticipantChange{Joined: true, Size: w.registry.Size()})
	return nil
}

func (w *RouterWorker) handlePost(ctx context.Context, cmd domain.PostMessageCommand) error {
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		// Mirrors client-side validation; silent no-op.
		return nil
	}
	if _, ok := w.registry.Lookup(cmd.Sender); !ok {
		// Raced against a just-processed leave; drop, never error.
		w.log.Debug("Message from unregistered identity dropped", "identity", cmd.Sender)
		return nil
	}

	at := cmd.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := w.emit(ctx, event.MessagePosted{
		ID:      uuid.New(),
		Author:  cmd.Sender,
		Content: content,
		At:      at,
	}); err != nil {
		return err
	}
	w.report(event.MessagePostedType, nil)
	return nil
}

func (w *RouterWorker) handleLeave(ctx context.Context, cmd domain.LeaveCommand) error {
	session, removed := w.registry.Unregister(cmd.Identity)
	if !removed {
		// Never registered or already gone: emit nothing.
		return nil
	}

	// The session owns its sink; closing here guarantees a broadcaster
	// failure can't resurrect delivery to a dead connection.
	_ = session.Sink.Close()

	w.log.Info("Participant left", "identity", cmd.Identity, "room_size", w.registry.Size())
	if err := w.emit(ctx, event.ParticipantLeft{Identity: cmd.Identity, At: time.Now().UTC()}); err != nil {
		return err
	}
	if err := w.emitPresence(ctx); err != nil {
		return err
	}
	w.report(event.ParticipantType, event.ParticipantChange{Joined: false, Size: w.registry.Size()})
	return nil
}

func (w *RouterWorker) emitPresence(ctx context.Context) error {
	return w.emit(ctx, event.PresenceChanged{
		Users: w.registry.SnapshotIdentities(),
		At:    time.Now().UTC(),
	})
}

func (w *RouterWorker) emit(ctx context.Context, e domain.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case w.events <- e:
		return nil
	}
}

func (w *RouterWorker) report(t event.Type, payload any) {
	select {
	case w.telemetry <- event.Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
}

// reply never blocks the serializer: Reply channels are buffered by the
// caller, and an absent channel means the caller does not care.
func reply(ch chan error, err error) {
	if ch == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}
