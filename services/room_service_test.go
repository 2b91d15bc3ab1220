package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomchat/auth"
	"roomchat/broadcast"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/errors"
	"roomchat/mocks"
)

type roomServiceFixture struct {
	rooms         *mocks.MockIRoomRepository
	roomUsers     *mocks.MockIRoomUserRepository
	users         *mocks.MockIUserRepository
	messages      *mocks.MockIMessageRepository
	bus           *mocks.MockBus
	registry      *mocks.MockSessionRegistry
	notifications *mocks.MockINotificationRepository
	gateway       *mocks.MockGateway
	svc           *RoomService
}

func newRoomServiceFixture(ctrl *gomock.Controller) roomServiceFixture {
	log := slog.Default()
	f := roomServiceFixture{
		rooms:         mocks.NewMockIRoomRepository(ctrl),
		roomUsers:     mocks.NewMockIRoomUserRepository(ctrl),
		users:         mocks.NewMockIUserRepository(ctrl),
		messages:      mocks.NewMockIMessageRepository(ctrl),
		bus:           mocks.NewMockBus(ctrl),
		registry:      mocks.NewMockSessionRegistry(ctrl),
		notifications: mocks.NewMockINotificationRepository(ctrl),
		gateway:       mocks.NewMockGateway(ctrl),
	}
	notificationService := NewNotificationService(log, f.notifications, f.gateway, nil)
	f.svc = NewRoomService(log, f.rooms, f.roomUsers, f.users, f.messages, f.bus, f.registry, notificationService, "/img")
	return f
}

func TestRoomService_CreateRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should reject a private room without password", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		_, err := f.svc.CreateRoom(ctx, CreateRoomCommand{
			Name:       "secret",
			Visibility: domain.VisibilityPrivate,
			OwnerID:    1,
		})

		req.True(errors.IsValidation(err))
	})

	t.Run("should reject an unknown visibility", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		_, err := f.svc.CreateRoom(ctx, CreateRoomCommand{
			Name:       "weird",
			Visibility: "SHADOW",
			OwnerID:    1,
		})

		req.True(errors.IsValidation(err))
	})

	t.Run("should persist the room with a hashed password and ADMIN owner", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(1)).
			Return(domain.UserProfile{ID: 1, Nickname: "Alice"}, nil)
		f.rooms.EXPECT().
			SaveWithOwner(ctx, gomock.Any(), "Alice").
			DoAndReturn(func(_ context.Context, room domain.Room, _ string) (domain.RoomID, error) {
				req.Equal("secret", room.Name)
				req.NotEmpty(room.PasswordHash)
				req.NotEqual("hunter2", room.PasswordHash)
				ok, err := auth.ComparePassword("hunter2", room.PasswordHash)
				req.NoError(err)
				req.True(ok)
				return 7, nil
			})

		roomID, err := f.svc.CreateRoom(ctx, CreateRoomCommand{
			Name:       "secret",
			Visibility: domain.VisibilityPrivate,
			OwnerID:    1,
			Password:   "hunter2",
		})

		req.NoError(err)
		req.Equal(domain.RoomID(7), roomID)
	})
}

func TestRoomService_EnterRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should be idempotent for an existing member", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(2)).Return(domain.UserProfile{ID: 2, Nickname: "Bob"}, nil)
		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).Return(domain.Room{ID: 7, Visibility: domain.VisibilityPublic}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(2)).Return(true, nil)
		// No save, no broadcast
		f.bus.EXPECT().Publish(gomock.Any()).Times(0)

		roomID, err := f.svc.EnterRoom(ctx, 7, 2, "")

		req.NoError(err)
		req.Equal(domain.RoomID(7), roomID)
	})

	t.Run("should refuse a private room with the wrong password", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		hash, err := auth.HashPassword("correct")
		req.NoError(err)

		f.users.EXPECT().FindByID(ctx, domain.UserID(2)).Return(domain.UserProfile{ID: 2, Nickname: "Bob"}, nil)
		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).
			Return(domain.Room{ID: 7, Visibility: domain.VisibilityPrivate, PasswordHash: hash}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(2)).Return(false, nil)

		_, err = f.svc.EnterRoom(ctx, 7, 2, "wrong")

		req.True(errors.IsForbidden(err))
	})

	t.Run("should report a corrupt stored hash as transient, not forbidden", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(2)).Return(domain.UserProfile{ID: 2, Nickname: "Bob"}, nil)
		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).
			Return(domain.Room{ID: 7, Visibility: domain.VisibilityPrivate, PasswordHash: "not-a-hash"}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(2)).Return(false, nil)

		_, err := f.svc.EnterRoom(ctx, 7, 2, "correct")

		req.True(errors.IsTransientIO(err))
		req.False(errors.IsForbidden(err))
	})

	t.Run("should add the member and publish UserEntered", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(2)).Return(domain.UserProfile{ID: 2, Nickname: "Bob"}, nil)
		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).Return(domain.Room{ID: 7, Visibility: domain.VisibilityPublic}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(2)).Return(false, nil)
		f.roomUsers.EXPECT().Save(ctx, domain.Membership{RoomID: 7, UserID: 2, Nickname: "Bob", Role: domain.RoleMember}).Return(nil)
		f.bus.EXPECT().Publish(event.UserEntered{User: domain.UserProfile{ID: 2, Nickname: "Bob"}, Room: 7, Role: domain.RoleMember})

		_, err := f.svc.EnterRoom(ctx, 7, 2, "")

		req.NoError(err)
	})
}

func TestRoomService_ExitRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should forbid the admin from leaving", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(1)).Return(domain.RoleAdmin, nil)
		f.roomUsers.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := f.svc.ExitRoom(ctx, 7, 1)

		req.True(errors.IsForbidden(err))
	})

	t.Run("should treat a non-member exit as a no-op", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(9)).
			Return(domain.Role(""), errors.NotFound("not a member"))

		req.NoError(f.svc.ExitRoom(ctx, 7, 9))
	})

	t.Run("should remove the member and publish LEFT", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(2)).Return(domain.RoleMember, nil)
		f.roomUsers.EXPECT().Delete(ctx, domain.RoomID(7), domain.UserID(2)).Return(nil)
		f.bus.EXPECT().Publish(event.UserExited{UserID: 2, Room: 7, Reason: event.ReasonLeft})

		req.NoError(f.svc.ExitRoom(ctx, 7, 2))
	})
}

func TestRoomService_DeleteRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should forbid non-admin deletion", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(2)).Return(domain.RoleMember, nil)
		f.rooms.EXPECT().DeleteCascade(gomock.Any(), gomock.Any()).Times(0)

		req.True(errors.IsForbidden(f.svc.DeleteRoom(ctx, 7, 2)))
	})

	t.Run("should cascade first and broadcast ROOM_DELETED after", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(1)).Return(domain.RoleAdmin, nil)
		cascade := f.rooms.EXPECT().DeleteCascade(ctx, domain.RoomID(7)).Return(nil)
		f.bus.EXPECT().
			Publish(event.UserExited{Room: 7, Reason: event.ReasonRoomDeleted}).
			After(cascade)

		req.NoError(f.svc.DeleteRoom(ctx, 7, 1))
	})

	t.Run("should not broadcast when the cascade fails", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(1)).Return(domain.RoleAdmin, nil)
		f.rooms.EXPECT().DeleteCascade(ctx, domain.RoomID(7)).Return(errors.TransientIO("db down", nil))
		f.bus.EXPECT().Publish(gomock.Any()).Times(0)

		req.Error(f.svc.DeleteRoom(ctx, 7, 1))
	})
}

func TestRoomService_KickUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should forbid kicking by a plain member", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(2)).Return(domain.RoleMember, nil)

		req.True(errors.IsForbidden(f.svc.KickUser(ctx, 7, 2, 3)))
	})

	t.Run("should never kick an admin", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(1)).Return(domain.RoleAdmin, nil)
		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(1)).Return(domain.RoleAdmin, nil)

		req.True(errors.IsForbidden(f.svc.KickUser(ctx, 7, 1, 1)))
	})

	t.Run("should remove the target and publish KICKED", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(1)).Return(domain.RoleAdmin, nil)
		f.roomUsers.EXPECT().GetRole(ctx, domain.RoomID(7), domain.UserID(3)).Return(domain.RoleMember, nil)
		f.roomUsers.EXPECT().Delete(ctx, domain.RoomID(7), domain.UserID(3)).Return(nil)
		f.bus.EXPECT().Publish(event.UserExited{UserID: 3, Room: 7, Reason: event.ReasonKicked})

		req.NoError(f.svc.KickUser(ctx, 7, 1, 3))
	})
}

func TestRoomService_InviteUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should reject an invitee who already belongs", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(1)).Return(domain.UserProfile{ID: 1, Nickname: "Alice"}, nil)
		f.users.EXPECT().FindByID(ctx, domain.UserID(2)).Return(domain.UserProfile{ID: 2, Nickname: "Bob"}, nil)
		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).Return(domain.Room{ID: 7, Name: "general"}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(1)).Return(true, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(2)).Return(true, nil)

		req.True(errors.IsConflict(f.svc.InviteUser(ctx, 7, 1, 2)))
	})

	t.Run("should persist and deliver the invitation", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.users.EXPECT().FindByID(ctx, domain.UserID(1)).Return(domain.UserProfile{ID: 1, Nickname: "Alice"}, nil)
		f.users.EXPECT().FindByID(ctx, domain.UserID(2)).Return(domain.UserProfile{ID: 2, Nickname: "Bob"}, nil)
		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).Return(domain.Room{ID: 7, Name: "general"}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(1)).Return(true, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(2)).Return(false, nil)
		f.notifications.EXPECT().
			Save(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, n domain.Notification) (domain.Notification, error) {
				req.Equal(domain.UserID(2), n.UserID)
				req.Equal(domain.NotificationRoomInvitation, n.Type)
				req.Contains(n.Content, "Alice")
				req.Contains(n.Content, "general")
				req.Contains(n.Metadata, `"roomName":"general"`)
				n.ID = 42
				return n, nil
			})
		f.gateway.EXPECT().
			Publish(ctx, broadcast.UserNotificationsTopic(2), gomock.Any()).
			Return(nil)

		req.NoError(f.svc.InviteUser(ctx, 7, 1, 2))
	})
}

func TestRoomService_InitRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("should refuse a non-member", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).Return(domain.Room{ID: 7, Name: "general"}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(9)).Return(false, nil)

		_, err := f.svc.InitRoom(ctx, 7, 9, 20)
		req.True(errors.IsForbidden(err))
	})

	t.Run("should assemble members with live connectivity and recent messages", func(t *testing.T) {
		req := require.New(t)
		f := newRoomServiceFixture(ctrl)

		f.rooms.EXPECT().FindByID(ctx, domain.RoomID(7)).Return(domain.Room{ID: 7, Name: "general"}, nil)
		f.roomUsers.EXPECT().Exists(ctx, domain.RoomID(7), domain.UserID(1)).Return(true, nil)
		f.messages.EXPECT().
			FindByCursor(ctx, domain.RoomID(7), nil, 20).
			Return([]domain.Message{{ID: 5, RoomID: 7, AuthorID: 1, AuthorName: "Alice", Content: "hi", Kind: domain.KindText}}, nil)
		f.users.EXPECT().FindByID(ctx, domain.UserID(1)).
			Return(domain.UserProfile{ID: 1, Nickname: "Alice", ProfileImageURL: "alice.png"}, nil)
		f.roomUsers.EXPECT().
			FindUsersByRoom(ctx, domain.RoomID(7)).
			Return([]domain.RoomUser{
				{UserID: 1, Nickname: "Alice", Role: domain.RoleAdmin},
				{UserID: 2, Nickname: "Bob", Role: domain.RoleMember},
			}, nil)
		f.registry.EXPECT().IsConnected(domain.RoomID(7), domain.UserID(1)).Return(true)
		f.registry.EXPECT().IsConnected(domain.RoomID(7), domain.UserID(2)).Return(false)

		data, err := f.svc.InitRoom(ctx, 7, 1, 20)

		req.NoError(err)
		req.Equal("general", data.RoomName)
		req.Len(data.Messages, 1)
		req.Equal("/img/alice.png", data.Messages[0].ProfileImageURL)
		req.Len(data.Users, 2)
		req.True(data.Users[0].Connected)
		req.False(data.Users[1].Connected)
		req.Equal("/img/default.png", data.Users[1].ProfileImageURL)
	})
}
