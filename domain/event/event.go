package event

import (
	"time"

	"github.com/google/uuid"

	"chat-room/domain"
)

// MessagePosted is the raw fact that a joined identity submitted a message.
// It always passes through moderation before reaching any sink.
type MessagePosted struct {
	ID      uuid.UUID
	Author  domain.Identity
	Content string
	At      time.Time
}

func (e MessagePosted) EventName() string { return "message_posted" }

// SanitizedMessage is the broadcastable form of a message: censored content
// plus moderation metadata. This is what the chat frame is rendered from.
type SanitizedMessage struct {
	ID            uuid.UUID
	Author        domain.Identity
	Content       string
	Lang          string
	CensoredWords []string
	At            time.Time
}

func (e SanitizedMessage) EventName() string { return "sanitized_message" }

// ParticipantJoined announces a successful registration. Generated by the
// serializer only, never by a client.
type ParticipantJoined struct {
	Identity domain.Identity
	At       time.Time
}

func (e ParticipantJoined) EventName() string { return "participant_joined" }

// ParticipantLeft announces the removal of a session, whatever the cause.
type ParticipantLeft struct {
	Identity domain.Identity
	At       time.Time
}

func (e ParticipantLeft) EventName() string { return "participant_left" }

// PresenceChanged carries a fresh membership snapshot in registration order.
// One PresenceChanged follows every announcement that changed membership and
// reflects the registry state after that change.
type PresenceChanged struct {
	Users []domain.Identity
	At    time.Time
}

func (e PresenceChanged) EventName() string { return "presence_changed" }
