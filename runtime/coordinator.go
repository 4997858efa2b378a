package runtime

import (
	"context"
	"log/slog"
	"time"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/domain/event"
	"chat-room/errors"
	"chat-room/moderation"
	"chat-room/observability"
	"chat-room/runtime/workers"
)

var _ contract.IDispatcher = (*Coordinator)(nil)

// Options bounds the coordinator's internal queues and timers. Zero values
// fall back to defaults that suit a single busy room.
type Options struct {
	CommandBuffer   int
	EventBuffer     int
	TelemetryBuffer int
	SinkTimeout     time.Duration
	MetricInterval  time.Duration
	RestartInterval time.Duration
	LowCapacity     int
	CpuWarnPercent  float64
}

func (o *Options) withDefaults() {
	if o.CommandBuffer <= 0 {
		o.CommandBuffer = 256
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 256
	}
	if o.TelemetryBuffer <= 0 {
		o.TelemetryBuffer = 512
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = 2 * time.Second
	}
	if o.MetricInterval <= 0 {
		o.MetricInterval = 10 * time.Second
	}
	if o.LowCapacity <= 0 {
		o.LowCapacity = 10
	}
	if o.CpuWarnPercent <= 0 {
		o.CpuWarnPercent = 80
	}
}

// Coordinator is the composition root of one room. It owns the bounded
// channels between the pipeline stages, wires every worker under one
// supervisor, and is the only Dispatch entry point for transports.
//
// Pipeline: commands -> RouterWorker -> rawEvents -> ModerationWorker ->
// events -> FanoutWorker -> sinks. Each stage is a single worker so the
// serializer's total order survives to delivery.
type Coordinator struct {
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	moderator  moderation.Moderator
	counters   *observability.Counters
	opts       Options

	commands  chan domain.Command
	rawEvents chan domain.Event
	events    chan domain.Event
	telemetry chan event.Event

	done chan struct{}
}

func NewCoordinator(log *slog.Logger,
	supervisor contract.ISupervisor,
	registry contract.IRegistry,
	moderator moderation.Moderator,
	counters *observability.Counters,
	opts Options) *Coordinator {
	opts.withDefaults()
	return &Coordinator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		moderator:  moderator,
		counters:   counters,
		opts:       opts,
		commands:   make(chan domain.Command, opts.CommandBuffer),
		rawEvents:  make(chan domain.Event, opts.EventBuffer),
		events:     make(chan domain.Event, opts.EventBuffer),
		telemetry:  make(chan event.Event, opts.TelemetryBuffer),
		done:       make(chan struct{}),
	}
}

// Dispatch submits a command to the serializer. It never blocks: when the
// command queue is saturated the caller gets ErrQueueFull and must decide
// what to do with its connection.
func (c *Coordinator) Dispatch(cmd domain.Command) error {
	select {
	case c.commands <- cmd:
		return nil
	default:
		c.log.Warn("Command queue full, dropping", "command", cmd.CommandName())
		c.reportDropped(cmd)
		return errors.ErrQueueFull
	}
}

func (c *Coordinator) reportDropped(cmd domain.Command) {
	select {
	case c.telemetry <- event.Event{
		Type:      event.CommandDroppedType,
		CreatedAt: time.Now().UTC(),
		Payload:   event.CommandDropped{Command: cmd.CommandName()},
	}:
	default:
		c.log.Debug("Observability telemetry event lost")
	}
}

// Start wires the workers and launches the supervisor. It returns
// immediately; the pipeline runs until ctx is canceled or Stop is called.
func (c *Coordinator) Start(ctx context.Context) {
	handlers := []event.Handler{
		event.NewCounterHandler(c.log, c.counters),
		event.NewChannelCapacityHandler(c.log, c.opts.LowCapacity),
		event.NewProcStatsHandler(c.log, c.opts.CpuWarnPercent),
	}

	c.supervisor.Add(
		workers.NewRouterWorker(c.registry, c.commands, c.rawEvents, c.telemetry, c.log),
		workers.NewModerationWorker(c.moderator, c.rawEvents, c.events, c.telemetry, c.log),
		workers.NewFanoutWorker(c.log, c.registry, c, c.events, c.telemetry, c.opts.SinkTimeout),
		workers.NewTelemetryWorker(c.log, c.telemetry, handlers),
		workers.NewChannelCapacityWorker(c.log, []workers.NamedChannel{
			{Name: "commands", Channel: c.commands},
			{Name: "events", Channel: c.events},
			{Name: "telemetry", Channel: c.telemetry},
		}, c.telemetry, c.opts.MetricInterval),
		workers.NewProcStatsWorker(c.log, c.telemetry, c.opts.MetricInterval),
	)

	go func() {
		defer close(c.done)
		c.supervisor.Run(ctx)
	}()
}

// Stop cancels the supervised workers and waits for them to drain.
func (c *Coordinator) Stop() {
	c.supervisor.Stop()
	<-c.done
}

// Presence reports the online identities in join order.
func (c *Coordinator) Presence() []domain.Identity {
	return c.registry.SnapshotIdentities()
}

func (c *Coordinator) Size() int {
	return c.registry.Size()
}

// Stats snapshots the room counters for the HTTP surface.
func (c *Coordinator) Stats() observability.RoomStats {
	return c.counters.Snapshot()
}
