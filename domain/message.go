// Package domain contains core concepts of the chat room.
// This file defines Message and related rules.
// Messages are immutable once created and are never mutated after broadcast.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	Sender    Identity
	Content   string
	CreatedAt time.Time
}
