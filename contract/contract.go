//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"roomchat/domain"
	"roomchat/domain/event"
)

// Gateway delivers an opaque payload to every subscriber of a topic.
// No acknowledgement is returned; delivery is best effort.
type Gateway interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Bus accepts domain events and dispatches them asynchronously to all
// registered listeners. Publish never blocks the caller and never fails:
// a slow or failing listener must not roll back a committed business action.
type Bus interface {
	Publish(evt event.DomainEvent)
}

// Listener consumes domain events sequentially on its own worker.
// Variants it does not care about must be ignored, not rejected.
type Listener interface {
	Handle(ctx context.Context, evt event.DomainEvent) error
}

// SessionRegistry is the single source of truth for "who is connected
// where". It is a rebuildable connectivity cache, never consulted for
// authorization.
type SessionRegistry interface {
	Register(roomID domain.RoomID, userID domain.UserID, sessionID string)
	Unregister(sessionID string)
	ConnectedUsers(roomID domain.RoomID) []domain.UserID
	IsConnected(roomID domain.RoomID, userID domain.UserID) bool
	SessionIDFor(userID domain.UserID) (string, bool)
}

// Presence answers "is user X online anywhere", independent of rooms.
type Presence interface {
	OnConnect(sessionID string, userID domain.UserID)
	OnDisconnect(sessionID string) (domain.UserID, bool)
	IsOnline(userID domain.UserID) bool
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
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
