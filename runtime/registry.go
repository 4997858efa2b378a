package runtime

import (
	"sync"
	"time"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/errors"
)

// Registry is the single source of truth for who is online. It maps an
// Identity to its live session and preserves registration order, which is the
// order presence snapshots are rendered in.
//
// Mutation happens exclusively inside the serializer worker; the RWMutex only
// protects snapshot readers (HTTP presence surface, broadcaster) from tearing.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.Identity]contract.Session
	order    []domain.Identity
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.Identity]contract.Session),
	}
}

// Register inserts a new session for the identity. It fails with
// ErrDuplicateIdentity when the identity already has an active session;
// the existing session is left untouched.
func (r *Registry) Register(id domain.Identity, sink domain.EventSink) (contract.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return contract.Session{}, errors.ErrDuplicateIdentity
	}

	session := contract.Session{
		Identity: id,
		Sink:     sink,
		JoinedAt: time.Now().UTC(),
	}
	r.sessions[id] = session
	r.order = append(r.order, id)
	return session, nil
}

// Unregister removes and returns the session if present. Disconnect races are
// expected, so a missing identity is a silent no-op.
func (r *Registry) Unregister(id domain.Identity) (contract.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return contract.Session{}, false
	}

	delete(r.sessions, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return session, true
}

// SnapshotIdentities returns the current membership in registration order.
// The returned slice is a copy; callers may hold it across broadcasts.
func (r *Registry) SnapshotIdentities() []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]domain.Identity, len(r.order))
	copy(snapshot, r.order)
	return snapshot
}

// SnapshotSessions returns the live sessions in registration order, for the
// broadcaster to deliver against.
func (r *Registry) SnapshotSessions() []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]contract.Session, 0, len(r.order))
	for _, id := range r.order {
		snapshot = append(snapshot, r.sessions[id])
	}
	return snapshot
}

// Lookup returns the sink bound to the identity, or false for any non-member.
func (r *Registry) Lookup(id domain.Identity) (domain.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return session.Sink, true
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
