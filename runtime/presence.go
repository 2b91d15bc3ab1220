package runtime

import (
	"fmt"
	"log/slog"
	"sync"

	"roomchat/domain"
)

// PresenceTracker records global online status, independent of room
// membership. It answers friend-list style queries; room member lists go
// through the Registry instead.
type PresenceTracker struct {
	log *slog.Logger

	// sessionID -> userID
	connected sync.Map
}

func NewPresenceTracker(log *slog.Logger) *PresenceTracker {
	return &PresenceTracker{log: log}
}

func (p *PresenceTracker) OnConnect(sessionID string, userID domain.UserID) {
	p.connected.Store(sessionID, userID)
	p.log.Info(fmt.Sprintf("[Presence] user connected: user=%d session=%s", userID, sessionID))
}

// OnDisconnect clears the session and reports which user went offline,
// so callers can notify that user's friends. Unknown sessions are a no-op.
func (p *PresenceTracker) OnDisconnect(sessionID string) (domain.UserID, bool) {
	value, loaded := p.connected.LoadAndDelete(sessionID)
	if !loaded {
		return 0, false
	}
	userID := value.(domain.UserID)
	p.log.Info(fmt.Sprintf("[Presence] user disconnected: user=%d", userID))
	return userID, true
}

// IsOnline reports whether the user has any tracked session, in any room
// or none at all.
func (p *PresenceTracker) IsOnline(userID domain.UserID) bool {
	online := false
	p.connected.Range(func(_, value any) bool {
		if value.(domain.UserID) == userID {
			online = true
			return false
		}
		return true
	})
	return online
}
