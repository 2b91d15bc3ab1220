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

type friendshipServiceFixture struct {
	friendships   *mocks.MockIFriendshipRepository
	users         *mocks.MockIUserRepository
	notifications *mocks.MockINotificationRepository
	gateway       *mocks.MockGateway
	svc           *FriendshipService
}

func newFriendshipServiceFixture(ctrl *gomock.Controller) friendshipServiceFixture {
	log := slog.Default()
	f := friendshipServiceFixture{
		friendships:   mocks.NewMockIFriendshipRepository(ctrl),
		users:         mocks.NewMockIUserRepository(ctrl),
		notifications: mocks.NewMockINotificationRepository(ctrl),
		gateway:       mocks.NewMockGateway(ctrl),
	}
	notificationService := NewNotificationService(log, f.notifications, f.gateway, nil)
	f.svc = NewFriendshipService(log, f.friendships, f.users, notificationService)
	return f
}

func TestFriendshipService_RequestFriendship(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should reject a self request", func(t *testing.T) {
		req := require.New(t)
		f := newFriendshipServiceFixture(ctrl)

		err := f.svc.RequestFriendship(ctx, 10, 10)

		req.True(errors.IsValidation(err))
	})

	t.Run("should refuse when the users are already friends", func(t *testing.T) {
		req := require.New(t)
		f := newFriendshipServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(10)).Return(domain.UserProfile{ID: 10, Nickname: "Alice"}, nil)
		f.users.EXPECT().FindByID(ctx, domain.UserID(20)).Return(domain.UserProfile{ID: 20, Nickname: "Bob"}, nil)
		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(10), domain.FriendshipAccepted).
			Return([]domain.Friendship{{UserID1: 20, UserID2: 10, Status: domain.FriendshipAccepted}}, nil)
		f.friendships.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

		req.True(errors.IsConflict(f.svc.RequestFriendship(ctx, 10, 20)))
	})

	t.Run("should refuse a duplicate pending request", func(t *testing.T) {
		req := require.New(t)
		f := newFriendshipServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(10)).Return(domain.UserProfile{ID: 10, Nickname: "Alice"}, nil)
		f.users.EXPECT().FindByID(ctx, domain.UserID(20)).Return(domain.UserProfile{ID: 20, Nickname: "Bob"}, nil)
		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(10), domain.FriendshipAccepted).
			Return(nil, nil)
		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(10), domain.FriendshipPending).
			Return([]domain.Friendship{{UserID1: 10, UserID2: 20, Status: domain.FriendshipPending}}, nil)
		f.friendships.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

		req.True(errors.IsConflict(f.svc.RequestFriendship(ctx, 10, 20)))
	})

	t.Run("should save PENDING and notify the recipient", func(t *testing.T) {
		req := require.New(t)
		f := newFriendshipServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(10)).Return(domain.UserProfile{ID: 10, Nickname: "Alice"}, nil)
		f.users.EXPECT().FindByID(ctx, domain.UserID(20)).Return(domain.UserProfile{ID: 20, Nickname: "Bob"}, nil)
		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(10), domain.FriendshipAccepted).
			Return(nil, nil)
		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(10), domain.FriendshipPending).
			Return(nil, nil)
		f.friendships.EXPECT().
			Save(ctx, domain.Friendship{UserID1: 10, UserID2: 20, Status: domain.FriendshipPending}).
			Return(nil)
		f.notifications.EXPECT().
			Save(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, n domain.Notification) (domain.Notification, error) {
				req.Equal(domain.UserID(20), n.UserID)
				req.Equal(domain.NotificationFriendRequest, n.Type)
				req.Contains(n.Content, "Alice")
				req.Equal(int64(10), n.RelatedID)
				return n, nil
			})
		f.gateway.EXPECT().
			Publish(ctx, broadcast.UserNotificationsTopic(20), gomock.Any()).
			Return(nil)

		req.NoError(f.svc.RequestFriendship(ctx, 10, 20))
	})
}

func TestFriendshipService_AcceptFriendship(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should refuse when no pending request exists", func(t *testing.T) {
		req := require.New(t)
		f := newFriendshipServiceFixture(ctrl)

		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(20), domain.FriendshipPending).
			Return(nil, nil)
		f.friendships.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

		req.True(errors.IsNotFound(f.svc.AcceptFriendship(ctx, 20, 10)))
	})

	t.Run("should not let the requester accept their own request", func(t *testing.T) {
		req := require.New(t)
		f := newFriendshipServiceFixture(ctrl)

		// The pending row is oriented requester -> recipient; seen from
		// the requester's side it never matches.
		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(10), domain.FriendshipPending).
			Return([]domain.Friendship{{UserID1: 10, UserID2: 20, Status: domain.FriendshipPending}}, nil)
		f.friendships.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

		req.True(errors.IsNotFound(f.svc.AcceptFriendship(ctx, 10, 20)))
	})

	t.Run("should flip the request to ACCEPTED and notify the requester", func(t *testing.T) {
		req := require.New(t)
		f := newFriendshipServiceFixture(ctrl)

		f.friendships.EXPECT().
			FindByUserAndStatus(ctx, domain.UserID(20), domain.FriendshipPending).
			Return([]domain.Friendship{{UserID1: 10, UserID2: 20, Status: domain.FriendshipPending}}, nil)
		f.friendships.EXPECT().
			Save(ctx, domain.Friendship{UserID1: 10, UserID2: 20, Status: domain.FriendshipAccepted}).
			Return(nil)
		f.users.EXPECT().FindByID(ctx, domain.UserID(20)).Return(domain.UserProfile{ID: 20, Nickname: "Bob"}, nil)
		f.notifications.EXPECT().
			Save(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, n domain.Notification) (domain.Notification, error) {
				req.Equal(domain.UserID(10), n.UserID)
				req.Equal(domain.NotificationFriendAccepted, n.Type)
				req.Contains(n.Content, "Bob")
				return n, nil
			})
		f.gateway.EXPECT().
			Publish(ctx, broadcast.UserNotificationsTopic(10), gomock.Any()).
			Return(nil)

		req.NoError(f.svc.AcceptFriendship(ctx, 20, 10))
	})
}

func TestFriendshipService_Friends(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	f := newFriendshipServiceFixture(ctrl)

	f.friendships.EXPECT().
		FindByUserAndStatus(ctx, domain.UserID(10), domain.FriendshipAccepted).
		Return([]domain.Friendship{
			{UserID1: 10, UserID2: 20, Status: domain.FriendshipAccepted},
			{UserID1: 30, UserID2: 10, Status: domain.FriendshipAccepted},
		}, nil)
	f.users.EXPECT().FindByID(ctx, domain.UserID(20)).Return(domain.UserProfile{ID: 20, Nickname: "Bob"}, nil)
	// A friend whose account vanished is skipped, not an error
	f.users.EXPECT().FindByID(ctx, domain.UserID(30)).Return(domain.UserProfile{}, errors.NotFound("user not found"))

	friends, err := f.svc.Friends(ctx, 10)

	req.NoError(err)
	req.Len(friends, 1)
	req.Equal(domain.UserID(20), friends[0].ID)
}
