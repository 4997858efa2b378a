package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/domain/event"
	"chat-room/errors"
	"chat-room/mocks"
)

func TestFanoutWorker_DeliversToEverySink(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockIRegistry(ctrl)
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	sink1 := mocks.NewMockEventSink(ctrl)
	sink2 := mocks.NewMockEventSink(ctrl)

	worker := NewFanoutWorker(log, registry, dispatcher,
		make(chan domain.Event, 16), make(chan event.Event, 16), 10*time.Second)

	evt := event.SanitizedMessage{Content: "hello"}

	// Given two registered sessions
	registry.EXPECT().SnapshotSessions().Return([]contract.Session{
		{Identity: "alice", Sink: sink1},
		{Identity: "bob", Sink: sink2},
	}).Times(1)

	// Then both sinks consume the event
	sink1.EXPECT().Consume(gomock.Any(), domain.Event(evt)).Return(nil).Times(1)
	sink2.EXPECT().Consume(gomock.Any(), domain.Event(evt)).Return(nil).Times(1)

	// When the event is fanned out, no leave is scheduled
	worker.Fanout(context.Background(), evt)
}

func TestFanoutWorker_FailedSinkBecomesLeave(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockIRegistry(ctrl)
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	deadSink := mocks.NewMockEventSink(ctrl)
	liveSink := mocks.NewMockEventSink(ctrl)

	telemetry := make(chan event.Event, 16)
	worker := NewFanoutWorker(log, registry, dispatcher,
		make(chan domain.Event, 16), telemetry, 10*time.Second)

	evt := event.SanitizedMessage{Content: "hello"}

	// Given the first sink is saturated and the second is healthy
	registry.EXPECT().SnapshotSessions().Return([]contract.Session{
		{Identity: "alice", Sink: deadSink},
		{Identity: "bob", Sink: liveSink},
	}).Times(1)
	deadSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrQueueFull).Times(1)
	liveSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Then a leave is scheduled for the dead sink only
	dispatcher.EXPECT().Dispatch(domain.LeaveCommand{Identity: "alice"}).Return(nil).Times(1)

	// When the event is fanned out
	worker.Fanout(context.Background(), evt)

	// And the failure was reported to telemetry
	tel := <-telemetry
	req.Equal(event.DeliveryFailedType, tel.Type)
	payload, ok := tel.Payload.(event.DeliveryFailed)
	req.True(ok)
	req.Equal("alice", payload.Identity)
}

func TestFanoutWorker_SinkTimeout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockIRegistry(ctrl)
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	worker := NewFanoutWorker(log, registry, dispatcher,
		make(chan domain.Event, 16), make(chan event.Event, 16), sinkTimeout)

	// Given a sink blocking until the delivery deadline fires
	registry.EXPECT().SnapshotSessions().Return([]contract.Session{
		{Identity: "alice", Sink: slowSink},
	}).Times(1)
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt domain.Event) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).Times(1)

	// Then the timeout converts into a leave
	dispatcher.EXPECT().Dispatch(domain.LeaveCommand{Identity: "alice"}).Return(nil).Times(1)

	// When the event is fanned out
	worker.Fanout(context.Background(), event.SanitizedMessage{})
}
