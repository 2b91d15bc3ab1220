package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"roomchat/domain"
	"roomchat/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, username, nickname string) domain.UserID {
	t.Helper()
	users := NewUserRepository(store, slog.Default())
	id, err := users.Create(context.Background(), domain.UserProfile{Username: username, Nickname: nickname})
	require.NoError(t, err)
	return id
}

func TestRoomRepository_SaveWithOwner(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	rooms := NewRoomRepository(store, slog.Default())
	roomUsers := NewRoomUserRepository(store, slog.Default())

	ownerID := seedUser(t, store, "alice", "Alice")

	// When creating a room with its owner
	roomID, err := rooms.SaveWithOwner(ctx, domain.Room{
		Name:       "general",
		Visibility: domain.VisibilityPublic,
		OwnerID:    ownerID,
	}, "Alice")
	req.NoError(err)

	// Then the room exists and the owner holds the ADMIN role
	room, err := rooms.FindByID(ctx, roomID)
	req.NoError(err)
	req.Equal("general", room.Name)
	req.Equal(domain.VisibilityPublic, room.Visibility)

	role, err := roomUsers.GetRole(ctx, roomID, ownerID)
	req.NoError(err)
	req.Equal(domain.RoleAdmin, role)
}

func TestRoomRepository_FindByIDNotFound(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	rooms := NewRoomRepository(store, slog.Default())

	_, err := rooms.FindByID(context.Background(), 999)
	req.True(errors.IsNotFound(err))
}

func TestRoomRepository_FindAllWithCount(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	rooms := NewRoomRepository(store, slog.Default())
	roomUsers := NewRoomUserRepository(store, slog.Default())

	aliceID := seedUser(t, store, "alice", "Alice")
	bobID := seedUser(t, store, "bob", "Bob")

	roomID, err := rooms.SaveWithOwner(ctx, domain.Room{Name: "general", Visibility: domain.VisibilityPublic, OwnerID: aliceID}, "Alice")
	req.NoError(err)
	req.NoError(roomUsers.Save(ctx, domain.Membership{RoomID: roomID, UserID: bobID, Nickname: "Bob", Role: domain.RoleMember}))

	listings, err := rooms.FindAllWithCount(ctx)
	req.NoError(err)
	req.Len(listings, 1)
	req.Equal("general", listings[0].Name)
	req.Equal("Alice", listings[0].OwnerNickname)
	req.Equal(2, listings[0].MemberCount)
}

func TestRoomRepository_DeleteCascade(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	rooms := NewRoomRepository(store, slog.Default())
	roomUsers := NewRoomUserRepository(store, slog.Default())
	messages := NewMessageRepository(store, slog.Default())

	ownerID := seedUser(t, store, "alice", "Alice")
	roomID, err := rooms.SaveWithOwner(ctx, domain.Room{Name: "doomed", Visibility: domain.VisibilityPublic, OwnerID: ownerID}, "Alice")
	req.NoError(err)

	_, err = messages.Save(ctx, domain.Message{RoomID: roomID, AuthorID: ownerID, AuthorName: "Alice", Content: "hello", Kind: domain.KindText})
	req.NoError(err)

	// When the room is deleted
	req.NoError(rooms.DeleteCascade(ctx, roomID))

	// Then room, memberships and messages are all gone
	_, err = rooms.FindByID(ctx, roomID)
	req.True(errors.IsNotFound(err))
	_, err = roomUsers.GetRole(ctx, roomID, ownerID)
	req.True(errors.IsNotFound(err))
	count, err := messages.CountByRoom(ctx, roomID)
	req.NoError(err)
	req.Zero(count)

	// Deleting again reports NotFound
	req.True(errors.IsNotFound(rooms.DeleteCascade(ctx, roomID)))
}

func TestRoomUserRepository_NicknameAndRole(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	rooms := NewRoomRepository(store, slog.Default())
	roomUsers := NewRoomUserRepository(store, slog.Default())

	ownerID := seedUser(t, store, "alice", "Alice")
	bobID := seedUser(t, store, "bob", "Bob")
	roomID, err := rooms.SaveWithOwner(ctx, domain.Room{Name: "general", Visibility: domain.VisibilityPublic, OwnerID: ownerID}, "Alice")
	req.NoError(err)

	req.NoError(roomUsers.Save(ctx, domain.Membership{RoomID: roomID, UserID: bobID, Nickname: "Bob", Role: domain.RoleMember}))

	nickname, err := roomUsers.GetNickname(ctx, roomID, bobID)
	req.NoError(err)
	req.Equal("Bob", nickname)

	req.NoError(roomUsers.UpdateNickname(ctx, roomID, bobID, "Bobby"))
	nickname, err = roomUsers.GetNickname(ctx, roomID, bobID)
	req.NoError(err)
	req.Equal("Bobby", nickname)

	// Membership queries for unknown pairs report NotFound
	_, err = roomUsers.GetRole(ctx, roomID, 999)
	req.True(errors.IsNotFound(err))

	exists, err := roomUsers.Exists(ctx, roomID, bobID)
	req.NoError(err)
	req.True(exists)

	req.NoError(roomUsers.Delete(ctx, roomID, bobID))
	exists, err = roomUsers.Exists(ctx, roomID, bobID)
	req.NoError(err)
	req.False(exists)
}
