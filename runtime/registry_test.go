package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-room/domain"
	"chat-room/errors"
)

type Sink struct {
}

func (s Sink) Consume(ctx context.Context, e domain.Event) error {
	return nil
}

func (s Sink) Close() error {
	return nil
}

func TestRegistry_Register_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := Sink{}

	// Given an empty room
	req.Zero(registry.Size())

	// When a participant registers
	session, err := registry.Register("alice", sink)

	// Then
	req.NoError(err)
	req.Equal(domain.Identity("alice"), session.Identity)
	req.Equal(sink, session.Sink)
	req.False(session.JoinedAt.IsZero())

	req.Equal(1, registry.Size())
	req.Equal([]domain.Identity{"alice"}, registry.SnapshotIdentities())
}

func TestRegistry_Register_Duplicate_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := Sink{}

	// Given a registered participant
	_, err := registry.Register("alice", first)
	req.NoError(err)

	// When the same identity registers again
	_, err = registry.Register("alice", Sink{})

	// Then the second registration is rejected
	req.ErrorIs(err, errors.ErrDuplicateIdentity)

	// And the original session is untouched
	sink, ok := registry.Lookup("alice")
	req.True(ok)
	req.Equal(first, sink)
	req.Equal(1, registry.Size())
}

func TestRegistry_Snapshot_Preserves_Registration_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When participants register in a known order
	for _, id := range []domain.Identity{"clara", "alice", "bob"} {
		_, err := registry.Register(id, Sink{})
		req.NoError(err)
	}

	// Then snapshots render that exact order, not map order
	req.Equal([]domain.Identity{"clara", "alice", "bob"}, registry.SnapshotIdentities())

	sessions := registry.SnapshotSessions()
	req.Len(sessions, 3)
	req.Equal(domain.Identity("clara"), sessions[0].Identity)
	req.Equal(domain.Identity("bob"), sessions[2].Identity)
}

func TestRegistry_Unregister_Removes_From_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given three participants
	for _, id := range []domain.Identity{"clara", "alice", "bob"} {
		_, err := registry.Register(id, Sink{})
		req.NoError(err)
	}

	// When the middle one leaves
	session, removed := registry.Unregister("alice")

	// Then the session is returned and the order closes the gap
	req.True(removed)
	req.Equal(domain.Identity("alice"), session.Identity)
	req.Equal([]domain.Identity{"clara", "bob"}, registry.SnapshotIdentities())
	req.Equal(2, registry.Size())

	_, ok := registry.Lookup("alice")
	req.False(ok)
}

func TestRegistry_Unregister_Unknown_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When an identity that never joined leaves
	_, removed := registry.Unregister("ghost")

	// Then nothing happens
	req.False(removed)
	req.Zero(registry.Size())
}

func TestRegistry_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	_, err := registry.Register("alice", Sink{})
	req.NoError(err)

	// Given a snapshot taken before a membership change
	snapshot := registry.SnapshotIdentities()

	// When the membership changes
	_, err = registry.Register("bob", Sink{})
	req.NoError(err)

	// Then the old snapshot is unaffected
	req.Equal([]domain.Identity{"alice"}, snapshot)
}
