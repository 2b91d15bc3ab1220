package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"roomchat/broadcast"
	"roomchat/domain"
	"roomchat/observability"
	"roomchat/repositories"
	"roomchat/runtime"
)

// PresenceService turns raw connect/disconnect signals into friend-list
// fan-out: every accepted friend of the user gets a transient
// PRESENCE_UPDATE on their private topic. Nothing is persisted; presence
// is only meaningful while the process lives.
type PresenceService struct {
	log           *slog.Logger
	tracker       *runtime.PresenceTracker
	friendships   repositories.IFriendshipRepository
	users         repositories.IUserRepository
	notifications *NotificationService
	metrics       *observability.Metrics
}

func NewPresenceService(log *slog.Logger, tracker *runtime.PresenceTracker,
	friendships repositories.IFriendshipRepository, users repositories.IUserRepository,
	notifications *NotificationService, metrics *observability.Metrics) *PresenceService {
	return &PresenceService{
		log:           log,
		tracker:       tracker,
		friendships:   friendships,
		users:         users,
		notifications: notifications,
		metrics:       metrics,
	}
}

// HandleConnect records the session and tells the user's friends they
// came online.
func (s *PresenceService) HandleConnect(ctx context.Context, sessionID string, userID domain.UserID) {
	s.tracker.OnConnect(sessionID, userID)
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.fanOut(ctx, userID, true)
}

// HandleDisconnect clears the session. Sessions the tracker never saw
// are ignored; otherwise the user's friends learn they went offline.
func (s *PresenceService) HandleDisconnect(ctx context.Context, sessionID string) {
	userID, known := s.tracker.OnDisconnect(sessionID)
	if !known {
		return
	}
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	s.fanOut(ctx, userID, false)
}

// IsOnline reports the tracked status for one user.
func (s *PresenceService) IsOnline(userID domain.UserID) bool {
	return s.tracker.IsOnline(userID)
}

func (s *PresenceService) fanOut(ctx context.Context, userID domain.UserID, online bool) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Presence fan-out skipped, user %d lookup failed: %v", userID, err))
		return
	}

	friendships, err := s.friendships.FindByUserAndStatus(ctx, userID, domain.FriendshipAccepted)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Presence fan-out skipped, friendships of user %d unavailable: %v", userID, err))
		return
	}

	change, err := json.Marshal(broadcast.PresenceChangePayload{
		UserID:   userID,
		Nickname: user.Nickname,
		Online:   online,
	})
	if err != nil {
		s.log.Warn(fmt.Sprintf("Presence payload encoding failed for user %d: %v", userID, err))
		return
	}

	for _, f := range friendships {
		s.notifications.Deliver(ctx, f.Other(userID), broadcast.NotificationPayload{
			Type:     domain.NotificationPresenceUpdate,
			Content:  fmt.Sprintf("%s is now %s", user.Nickname, onlineLabel(online)),
			Metadata: string(change),
		})
	}
}

func onlineLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
