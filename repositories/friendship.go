//go:generate go run go.uber.org/mock/mockgen -source=friendship.go -destination=../mocks/mock_friendship_repository.go -package=mocks
package repositories

import (
	"context"
	"log/slog"

	"roomchat/domain"
	"roomchat/errors"
)

type IFriendshipRepository interface {
	Save(ctx context.Context, f domain.Friendship) error
	FindByUserAndStatus(ctx context.Context, userID domain.UserID, status domain.FriendshipStatus) ([]domain.Friendship, error)
}

// FriendshipRepository backs the presence fan-out: when a user's online
// status flips, their accepted friends get notified.
type FriendshipRepository struct {
	store *Store
	log   *slog.Logger
}

func NewFriendshipRepository(store *Store, log *slog.Logger) FriendshipRepository {
	return FriendshipRepository{store: store, log: log}
}

func (r FriendshipRepository) Save(ctx context.Context, f domain.Friendship) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO friendships (user_id1, user_id2, status) VALUES (?, ?, ?)
		 ON CONFLICT (user_id1, user_id2) DO UPDATE SET status = excluded.status`,
		f.UserID1, f.UserID2, string(f.Status))
	if err != nil {
		return errors.TransientIO("saving friendship", err)
	}
	return nil
}

func (r FriendshipRepository) FindByUserAndStatus(ctx context.Context, userID domain.UserID, status domain.FriendshipStatus) ([]domain.Friendship, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT user_id1, user_id2, status FROM friendships
		 WHERE (user_id1 = ? OR user_id2 = ?) AND status = ?`,
		userID, userID, string(status))
	if err != nil {
		return nil, errors.TransientIO("listing friendships", err)
	}
	defer rows.Close()

	var friendships []domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		var s string
		if err := rows.Scan(&f.UserID1, &f.UserID2, &s); err != nil {
			return nil, errors.TransientIO("scanning friendship", err)
		}
		f.Status = domain.FriendshipStatus(s)
		friendships = append(friendships, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TransientIO("iterating friendships", err)
	}
	return friendships, nil
}
