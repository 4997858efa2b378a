package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-room/domain"
	"chat-room/errors"
	"chat-room/mocks"
)

func TestRoomService_Join_ForwardsSerializerVerdict(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	service := NewRoomService(dispatcher, time.Second)

	// Given the serializer accepts the join
	dispatcher.EXPECT().Dispatch(gomock.Any()).
		DoAndReturn(func(cmd domain.Command) error {
			join, ok := cmd.(domain.JoinCommand)
			req.True(ok)
			req.Equal(domain.Identity("alice"), join.Identity)
			join.Reply <- nil
			return nil
		}).Times(1)

	// When joining
	err := service.Join(context.Background(), "alice", sink)

	// Then the verdict reaches the caller
	req.NoError(err)
}

func TestRoomService_Join_DuplicateVerdict(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	service := NewRoomService(dispatcher, time.Second)

	dispatcher.EXPECT().Dispatch(gomock.Any()).
		DoAndReturn(func(cmd domain.Command) error {
			cmd.(domain.JoinCommand).Reply <- errors.ErrDuplicateIdentity
			return nil
		}).Times(1)

	err := service.Join(context.Background(), "alice", sink)
	req.ErrorIs(err, errors.ErrDuplicateIdentity)
}

func TestRoomService_Join_QueueFullSurfacesImmediately(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	service := NewRoomService(dispatcher, time.Second)

	// Given a saturated command queue
	dispatcher.EXPECT().Dispatch(gomock.Any()).Return(errors.ErrQueueFull).Times(1)

	err := service.Join(context.Background(), "alice", sink)
	req.ErrorIs(err, errors.ErrQueueFull)
}

func TestRoomService_Join_TimesOutWithoutReply(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	service := NewRoomService(dispatcher, 50*time.Millisecond)

	// Given a serializer that accepts the command but never answers
	dispatcher.EXPECT().Dispatch(gomock.Any()).Return(nil).Times(1)

	err := service.Join(context.Background(), "alice", sink)
	req.ErrorIs(err, errors.ErrJoinTimeout)
}

func TestRoomService_Join_CanceledContext(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	service := NewRoomService(dispatcher, time.Second)

	dispatcher.EXPECT().Dispatch(gomock.Any()).Return(nil).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := service.Join(ctx, "alice", sink)
	req.ErrorIs(err, context.Canceled)
}

func TestRoomService_PostAndLeave_PassThrough(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	service := NewRoomService(dispatcher, time.Second)

	at := time.Now().UTC()
	dispatcher.EXPECT().Dispatch(domain.PostMessageCommand{
		Sender:  "alice",
		Content: "hello",
		At:      at,
	}).Return(nil).Times(1)
	dispatcher.EXPECT().Dispatch(domain.LeaveCommand{Identity: "alice"}).Return(nil).Times(1)

	req.NoError(service.Post("alice", "hello", at))
	req.NoError(service.Leave("alice"))
}
