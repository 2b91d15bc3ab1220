package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomchat/broadcast"
	"roomchat/domain"
	"roomchat/errors"
	"roomchat/mocks"
)

func TestNotificationService_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should persist then push on the user's private topic", func(t *testing.T) {
		req := require.New(t)
		repo := mocks.NewMockINotificationRepository(ctrl)
		gateway := mocks.NewMockGateway(ctrl)
		svc := NewNotificationService(slog.Default(), repo, gateway, nil)

		pending := domain.Notification{UserID: 2, Type: domain.NotificationMention, Content: "hello"}
		repo.EXPECT().
			Save(ctx, pending).
			DoAndReturn(func(_ context.Context, n domain.Notification) (domain.Notification, error) {
				n.ID = 9
				return n, nil
			})
		gateway.EXPECT().
			Publish(ctx, broadcast.UserNotificationsTopic(2), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, payload any) error {
				req.Equal(uint64(9), payload.(broadcast.NotificationPayload).ID)
				return nil
			})

		saved, err := svc.Notify(ctx, pending)
		req.NoError(err)
		req.Equal(uint64(9), saved.ID)
	})

	t.Run("should keep the persisted record when the live push fails", func(t *testing.T) {
		req := require.New(t)
		repo := mocks.NewMockINotificationRepository(ctrl)
		gateway := mocks.NewMockGateway(ctrl)
		svc := NewNotificationService(slog.Default(), repo, gateway, nil)

		pending := domain.Notification{UserID: 2, Type: domain.NotificationMention}
		repo.EXPECT().Save(ctx, pending).Return(domain.Notification{ID: 9, UserID: 2}, nil)
		gateway.EXPECT().
			Publish(ctx, gomock.Any(), gomock.Any()).
			Return(errors.TransientIO("broker down", nil))

		saved, err := svc.Notify(ctx, pending)
		req.NoError(err)
		req.Equal(uint64(9), saved.ID)
	})

	t.Run("should not push anything when the save fails", func(t *testing.T) {
		req := require.New(t)
		repo := mocks.NewMockINotificationRepository(ctrl)
		gateway := mocks.NewMockGateway(ctrl)
		svc := NewNotificationService(slog.Default(), repo, gateway, nil)

		repo.EXPECT().Save(ctx, gomock.Any()).Return(domain.Notification{}, errors.TransientIO("db down", nil))
		gateway.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Notify(ctx, domain.Notification{UserID: 2})
		req.True(errors.IsTransientIO(err))
	})
}
