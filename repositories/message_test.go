package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"roomchat/domain"
	"roomchat/errors"
)

func seedMessages(t *testing.T, messages MessageRepository, roomID domain.RoomID, authorID domain.UserID, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		_, err := messages.Save(context.Background(), domain.Message{
			RoomID:     roomID,
			AuthorID:   authorID,
			AuthorName: "Alice",
			Content:    fmt.Sprintf("message %d", i),
			Kind:       domain.KindText,
		})
		require.NoError(t, err)
	}
}

func TestMessageRepository_FindByCursor(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	rooms := NewRoomRepository(store, slog.Default())
	messages := NewMessageRepository(store, slog.Default())

	ownerID := seedUser(t, store, "alice", "Alice")
	roomID, err := rooms.SaveWithOwner(ctx, domain.Room{Name: "general", Visibility: domain.VisibilityPublic, OwnerID: ownerID}, "Alice")
	req.NoError(err)

	// Given 50 messages with ids 1..50
	seedMessages(t, messages, roomID, ownerID, 50)

	t.Run("nil cursor returns the most recent page in chronological order", func(t *testing.T) {
		req := require.New(t)
		page, err := messages.FindByCursor(ctx, roomID, nil, 10)
		req.NoError(err)
		req.Len(page, 10)
		for i, msg := range page {
			req.Equal(domain.MessageID(41+i), msg.ID)
		}
	})

	t.Run("cursor returns the page strictly older than the cursor id", func(t *testing.T) {
		req := require.New(t)
		beginID := domain.MessageID(30)
		page, err := messages.FindByCursor(ctx, roomID, &beginID, 10)
		req.NoError(err)
		req.Len(page, 10)
		for i, msg := range page {
			req.Equal(domain.MessageID(20+i), msg.ID)
		}
	})

	t.Run("walking past the oldest message returns a short page", func(t *testing.T) {
		req := require.New(t)
		beginID := domain.MessageID(4)
		page, err := messages.FindByCursor(ctx, roomID, &beginID, 10)
		req.NoError(err)
		req.Len(page, 3)
		req.Equal(domain.MessageID(1), page[0].ID)
		req.Equal(domain.MessageID(3), page[2].ID)
	})

	t.Run("cursor at the oldest message returns an empty page", func(t *testing.T) {
		req := require.New(t)
		beginID := domain.MessageID(1)
		page, err := messages.FindByCursor(ctx, roomID, &beginID, 10)
		req.NoError(err)
		req.Empty(page)
	})
}

func TestMessageRepository_UpdateAndDelete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	rooms := NewRoomRepository(store, slog.Default())
	messages := NewMessageRepository(store, slog.Default())

	ownerID := seedUser(t, store, "alice", "Alice")
	roomID, err := rooms.SaveWithOwner(ctx, domain.Room{Name: "general", Visibility: domain.VisibilityPublic, OwnerID: ownerID}, "Alice")
	req.NoError(err)

	saved, err := messages.Save(ctx, domain.Message{RoomID: roomID, AuthorID: ownerID, AuthorName: "Alice", Content: "original", Kind: domain.KindText})
	req.NoError(err)
	req.NotZero(saved.ID)
	req.False(saved.CreatedAt.IsZero())

	// Editing rewrites content and kind
	saved.Content = "edited"
	saved.Kind = domain.KindUpdate
	req.NoError(messages.Update(ctx, saved))

	loaded, err := messages.FindByID(ctx, saved.ID)
	req.NoError(err)
	req.Equal("edited", loaded.Content)
	req.Equal(domain.KindUpdate, loaded.Kind)

	// Deleting removes the row for good
	req.NoError(messages.Delete(ctx, saved.ID))
	_, err = messages.FindByID(ctx, saved.ID)
	req.True(errors.IsNotFound(err))
}
