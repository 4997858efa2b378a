// Package wire defines the JSON frames exchanged with clients and their
// mapping from domain events.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-room/domain"
	"chat-room/domain/event"
	"chat-room/errors"
)

// Frame types.
const (
	TypeJoin   = "join"
	TypeChat   = "chat"
	TypeSystem = "system"
	TypeUsers  = "users"
	TypeError  = "error"
)

// Error reasons carried by TypeError frames.
const (
	ReasonDuplicateUsername = "duplicate_username"
	ReasonRateLimited       = "rate_limited"
	ReasonQueueFull         = "queue_full"
	ReasonInvalidFrame      = "invalid_frame"
)

// Frame is the single envelope for both directions. Fields are populated
// per type; everything else stays omitted on the wire.
type Frame struct {
	Type      string   `json:"type"`
	Username  string   `json:"username,omitempty"`
	Content   string   `json:"content,omitempty"`
	Sender    string   `json:"sender,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Users     []string `json:"users,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

type joinPayload struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}

type chatPayload struct {
	Content string `json:"content" validate:"required,max=4096"`
}

var validate = validator.New()

// ClientFrame is a validated inbound frame.
type ClientFrame struct {
	Type     string
	Username string
	Content  string
}

// ParseClient decodes and validates one inbound frame. A frame without a
// type field is treated as a chat message, which keeps bare
// {"content": "..."} payloads from older clients working.
func ParseClient(data []byte) (ClientFrame, error) {
	var raw Frame
	if err := json.Unmarshal(data, &raw); err != nil {
		return ClientFrame{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if raw.Type == "" {
		raw.Type = TypeChat
	}

	switch raw.Type {
	case TypeJoin:
		p := joinPayload{Username: raw.Username}
		if err := validate.Struct(p); err != nil {
			return ClientFrame{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
		return ClientFrame{Type: TypeJoin, Username: raw.Username}, nil
	case TypeChat:
		p := chatPayload{Content: raw.Content}
		if err := validate.Struct(p); err != nil {
			return ClientFrame{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
		return ClientFrame{Type: TypeChat, Content: raw.Content}, nil
	default:
		return ClientFrame{}, fmt.Errorf("%w: unknown type %q", errors.ErrInvalidPayload, raw.Type)
	}
}

// FromEvent maps one room event to its outbound frame. Events with no wire
// representation return ok=false.
func FromEvent(e domain.Event) (Frame, bool) {
	switch evt := e.(type) {
	case event.SanitizedMessage:
		return Frame{
			Type:      TypeChat,
			Sender:    evt.Author.String(),
			Content:   evt.Content,
			Timestamp: evt.At.UTC().Format(time.RFC3339),
		}, true
	case event.ParticipantJoined:
		return Frame{
			Type:    TypeSystem,
			Content: fmt.Sprintf("%s joined", evt.Identity),
		}, true
	case event.ParticipantLeft:
		return Frame{
			Type:    TypeSystem,
			Content: fmt.Sprintf("%s left", evt.Identity),
		}, true
	case event.PresenceChanged:
		return Frame{
			Type: TypeUsers,
			Users: lo.Map(evt.Users, func(id domain.Identity, _ int) string {
				return id.String()
			}),
		}, true
	default:
		return Frame{}, false
	}
}

// ToEvent maps a broadcast frame back to the room event a consumer-side
// read model ingests, the inverse of FromEvent for the stateful frame types.
// Frames carrying no read-model state return ok=false.
func ToEvent(f Frame) (domain.Event, bool) {
	switch f.Type {
	case TypeChat:
		at, err := time.Parse(time.RFC3339, f.Timestamp)
		if err != nil {
			at = time.Now().UTC()
		}
		return event.SanitizedMessage{
			ID:      uuid.New(),
			Author:  domain.NormalizeIdentity(f.Sender),
			Content: f.Content,
			At:      at,
		}, true
	case TypeUsers:
		return event.PresenceChanged{
			Users: lo.Map(f.Users, func(u string, _ int) domain.Identity {
				return domain.NormalizeIdentity(u)
			}),
			At: time.Now().UTC(),
		}, true
	default:
		return nil, false
	}
}

// ErrorFrame builds the unicast rejection sent before closing a misbehaving
// or rejected connection.
func ErrorFrame(reason, detail string) Frame {
	return Frame{Type: TypeError, Reason: reason, Content: detail}
}

// Encode marshals a frame for the websocket text channel.
func Encode(f Frame) ([]byte, error) {
	return json.Marshal(f)
}
