// Package runtime hosts the in-memory coordination pieces of the chat
// core: the session registry, the presence tracker and the event bus.
// It carries no business rules; persisted state stays the single source
// of truth for authorization.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"

	"roomchat/domain"
)

type binding struct {
	roomID domain.RoomID
	userID domain.UserID
}

// Registry is a thread-safe bidirectional index of
// (room, user) <-> transport session. Both directions use concurrent
// maps so connects, disconnects and presence queries never contend on
// a single lock. The registry is ephemeral: a restart loses all entries
// and they are rebuilt as clients reconnect.
type Registry struct {
	log *slog.Logger

	// roomID -> *sync.Map of userID -> sessionID
	sessionsByRoom sync.Map
	// sessionID -> binding
	bindingBySession sync.Map
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log}
}

// Register idempotently binds a user's session to a room. A second call
// for the same user replaces the previous session id.
func (r *Registry) Register(roomID domain.RoomID, userID domain.UserID, sessionID string) {
	for {
		value, _ := r.sessionsByRoom.LoadOrStore(roomID, &sync.Map{})
		users := value.(*sync.Map)
		users.Store(userID, sessionID)
		// A concurrent Unregister may have pruned the room map between
		// LoadOrStore and Store, orphaning the entry; re-check and retry
		// against a fresh map if so.
		if current, ok := r.sessionsByRoom.Load(roomID); ok && current == value {
			break
		}
	}
	r.bindingBySession.Store(sessionID, binding{roomID: roomID, userID: userID})
	r.log.Info(fmt.Sprintf("[Registry] session registered: room=%d user=%d session=%s", roomID, userID, sessionID))
}

// Unregister removes the binding found via the reverse map. Calling it
// with an unknown session id is a no-op. When the last member of a room
// disconnects, the room entry itself is pruned to bound memory.
func (r *Registry) Unregister(sessionID string) {
	value, loaded := r.bindingBySession.LoadAndDelete(sessionID)
	if !loaded {
		return
	}
	b := value.(binding)

	if users, ok := r.sessionsByRoom.Load(b.roomID); ok {
		m := users.(*sync.Map)
		// Drop the room entry only if it still points at this session. On
		// reconnect the new socket registers before the old one tears
		// down, and the replacement entry must survive.
		if m.CompareAndDelete(b.userID, sessionID) && emptyMap(m) {
			r.sessionsByRoom.Delete(b.roomID)
		}
	}
	r.log.Info(fmt.Sprintf("[Registry] session released: room=%d user=%d session=%s", b.roomID, b.userID, sessionID))
}

// ConnectedUsers returns a snapshot of the user ids connected to a room.
// Unknown rooms yield an empty slice.
func (r *Registry) ConnectedUsers(roomID domain.RoomID) []domain.UserID {
	users, ok := r.sessionsByRoom.Load(roomID)
	if !ok {
		return nil
	}
	var ids []domain.UserID
	users.(*sync.Map).Range(func(key, _ any) bool {
		ids = append(ids, key.(domain.UserID))
		return true
	})
	return ids
}

func (r *Registry) IsConnected(roomID domain.RoomID, userID domain.UserID) bool {
	users, ok := r.sessionsByRoom.Load(roomID)
	if !ok {
		return false
	}
	_, connected := users.(*sync.Map).Load(userID)
	return connected
}

// SessionIDFor returns a session id of the given user, used for
// direct-to-user delivery. It assumes at most one concurrent session per
// user; if that does not hold it returns an arbitrary matching session.
func (r *Registry) SessionIDFor(userID domain.UserID) (string, bool) {
	var sessionID string
	var found bool
	r.sessionsByRoom.Range(func(_, users any) bool {
		if value, ok := users.(*sync.Map).Load(userID); ok {
			sessionID = value.(string)
			found = true
			return false
		}
		return true
	})
	return sessionID, found
}

func emptyMap(m *sync.Map) bool {
	empty := true
	m.Range(func(_, _ any) bool {
		empty = false
		return false
	})
	return empty
}
