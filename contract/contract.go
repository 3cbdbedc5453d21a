//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"classroom-lab/domain/classroom"
	"classroom-lab/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision.
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

// EventSink receives events. A connection sink must never block the caller.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRoomRegistry is the process-wide lookup of classrooms.
type IRoomRegistry interface {
	Create(name string) (*classroom.Room, error)
	Get(id classroom.RoomID) (*classroom.Room, bool)
	List() []classroom.Summary
	Len() int
}

// ISessionDirectory binds connections to sessions and groups them per classroom.
type ISessionDirectory interface {
	Attach(connID classroom.ConnID, sink EventSink)
	Detach(connID classroom.ConnID)
	SinkFor(connID classroom.ConnID) (EventSink, bool)
	Register(session classroom.Session)
	Lookup(connID classroom.ConnID) (classroom.Session, bool)
	Remove(connID classroom.ConnID) (classroom.Session, bool)
	SinksForRoom(roomID classroom.RoomID) []EventSink
	Counts() (connections, sessions int)
}

// IDispatcher is the entry point used by transports.
type IDispatcher interface {
	Connect(connID classroom.ConnID, sink EventSink)
	Handle(ctx context.Context, connID classroom.ConnID, cmd classroom.Command)
	Reject(ctx context.Context, connID classroom.ConnID, err error)
	Disconnect(ctx context.Context, connID classroom.ConnID)
}
