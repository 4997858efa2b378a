package services

import (
	"context"
	"time"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/errors"
)

type IRoomService interface {
	Join(ctx context.Context, id domain.Identity, sink domain.EventSink) error
	Leave(id domain.Identity) error
	Post(sender domain.Identity, content string, at time.Time) error
}

// RoomService is the thin facade between transports and the room
// dispatcher. Join is the only synchronous operation: the caller needs the
// serializer's verdict before it may treat the connection as a member.
type RoomService struct {
	dispatcher contract.IDispatcher
	joinWait   time.Duration
}

func NewRoomService(dispatcher contract.IDispatcher, joinWait time.Duration) *RoomService {
	if joinWait <= 0 {
		joinWait = 5 * time.Second
	}
	return &RoomService{dispatcher: dispatcher, joinWait: joinWait}
}

// Join submits a JoinCommand and waits for the serializer's reply. A full
// queue surfaces immediately as ErrQueueFull; a serializer that never
// answers within the window surfaces as ErrJoinTimeout.
func (s *RoomService) Join(ctx context.Context, id domain.Identity, sink domain.EventSink) error {
	reply := make(chan error, 1)
	if err := s.dispatcher.Dispatch(domain.JoinCommand{
		Identity: id,
		Sink:     sink,
		Reply:    reply,
	}); err != nil {
		return err
	}

	timer := time.NewTimer(s.joinWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-reply:
		return err
	case <-timer.C:
		return errors.ErrJoinTimeout
	}
}

func (s *RoomService) Leave(id domain.Identity) error {
	return s.dispatcher.Dispatch(domain.LeaveCommand{Identity: id})
}

func (s *RoomService) Post(sender domain.Identity, content string, at time.Time) error {
	return s.dispatcher.Dispatch(domain.PostMessageCommand{
		Sender:  sender,
		Content: content,
		At:      at,
	})
}
