package services

import (
	"context"
	"fmt"
	"log/slog"

	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/observability"
	"roomchat/repositories"
)

// NotificationService persists notification records and delivers them
// straight to the user's private topic, bypassing room broadcasts.
type NotificationService struct {
	log           *slog.Logger
	notifications repositories.INotificationRepository
	gateway       contract.Gateway
	metrics       *observability.Metrics
}

func NewNotificationService(log *slog.Logger, notifications repositories.INotificationRepository,
	gateway contract.Gateway, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		log:           log,
		notifications: notifications,
		gateway:       gateway,
		metrics:       metrics,
	}
}

// Notify saves the record then pushes it live. A failed push is logged
// and dropped: the persisted record remains the authoritative copy.
func (s *NotificationService) Notify(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	saved, err := s.notifications.Save(ctx, n)
	if err != nil {
		return domain.Notification{}, err
	}

	topic := broadcast.UserNotificationsTopic(saved.UserID)
	if err := s.gateway.Publish(ctx, topic, broadcast.NotificationPayloadFrom(saved)); err != nil {
		s.log.Warn(fmt.Sprintf("Live delivery failed for notification %d: %v", saved.ID, err))
	} else if s.metrics != nil {
		s.metrics.IncrNotificationsSent()
	}
	return saved, nil
}

// Deliver pushes a transient payload to the user's private topic without
// persisting anything (presence updates).
func (s *NotificationService) Deliver(ctx context.Context, userID domain.UserID, payload broadcast.NotificationPayload) {
	topic := broadcast.UserNotificationsTopic(userID)
	if err := s.gateway.Publish(ctx, topic, payload); err != nil {
		s.log.Warn(fmt.Sprintf("Transient delivery failed for user %d: %v", userID, err))
		return
	}
	if s.metrics != nil {
		s.metrics.IncrNotificationsSent()
	}
}

// Recent lists a user's latest notifications, newest first.
func (s *NotificationService) Recent(ctx context.Context, userID domain.UserID, limit int) ([]domain.Notification, error) {
	return s.notifications.FindByUser(ctx, userID, limit)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID domain.UserID, id uint64) error {
	return s.notifications.MarkRead(ctx, userID, id)
}
