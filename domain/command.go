package domain

import (
	"time"
)

// Command is a state-changing request submitted to the room serializer.
// Commands from all connections funnel into one queue so that every
// registry mutation happens in a single total order.
type Command interface {
	CommandName() string
}

// JoinCommand asks the serializer to bind an identity to a connection.
// Reply carries the outcome back to the requesting connection only; it must
// be buffered so the serializer never blocks on a slow joiner.
type JoinCommand struct {
	Identity Identity
	Sink     EventSink
	Reply    chan error
}

func (c JoinCommand) CommandName() string { return "join" }

// PostMessageCommand carries a chat message from a joined identity.
// At is stamped by the transport with server time; client timestamps are
// advisory display text only.
type PostMessageCommand struct {
	Sender  Identity
	Content string
	At      time.Time
}

func (c PostMessageCommand) CommandName() string { return "post_message" }

// LeaveCommand removes an identity's session. It is idempotent: leaves for
// identities that were never registered are silently ignored, because
// disconnect races are expected.
type LeaveCommand struct {
	Identity Identity
}

func (c LeaveCommand) CommandName() string { return "leave" }
