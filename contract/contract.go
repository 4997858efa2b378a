//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"chat-room/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Session is the live binding between an Identity and its connection sink.
type Session struct {
	Identity domain.Identity
	Sink     domain.EventSink
	JoinedAt time.Time
}

// IRegistry is the single source of truth for who is online. Only the
// serializer mutates it; snapshot readers may run concurrently.
type IRegistry interface {
	Register(id domain.Identity, sink domain.EventSink) (Session, error)
	Unregister(id domain.Identity) (Session, bool)
	SnapshotIdentities() []domain.Identity
	SnapshotSessions() []Session
	Lookup(id domain.Identity) (domain.EventSink, bool)
	Size() int
}

// IDispatcher submits commands to the room serializer. Submission never
// blocks past queue-full backpressure; a full queue returns ErrQueueFull.
type IDispatcher interface {
	Dispatch(cmd domain.Command) error
}
