//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"roomchat/domain"
	"roomchat/errors"
)

type IUserRepository interface {
	FindByID(ctx context.Context, id domain.UserID) (domain.UserProfile, error)
	FindByUsername(ctx context.Context, username string) (domain.UserProfile, error)
	Create(ctx context.Context, profile domain.UserProfile) (domain.UserID, error)
}

// UserRepository reads the profile slice of user state. Registration and
// credentials live behind the auth boundary; the chat core only needs
// display identity.
type UserRepository struct {
	store *Store
	log   *slog.Logger
}

func NewUserRepository(store *Store, log *slog.Logger) UserRepository {
	return UserRepository{store: store, log: log}
}

func (r UserRepository) FindByID(ctx context.Context, id domain.UserID) (domain.UserProfile, error) {
	return r.scanProfile(r.store.db.QueryRowContext(ctx,
		`SELECT id, username, nickname, COALESCE(profile_image_url, '') FROM users WHERE id = ?`, id))
}

func (r UserRepository) FindByUsername(ctx context.Context, username string) (domain.UserProfile, error) {
	return r.scanProfile(r.store.db.QueryRowContext(ctx,
		`SELECT id, username, nickname, COALESCE(profile_image_url, '') FROM users WHERE username = ?`, username))
}

func (r UserRepository) Create(ctx context.Context, profile domain.UserProfile) (domain.UserID, error) {
	res, err := r.store.db.ExecContext(ctx,
		`INSERT INTO users (username, nickname, profile_image_url) VALUES (?, ?, ?)`,
		profile.Username, profile.Nickname, nullable(profile.ProfileImageURL))
	if err != nil {
		return 0, errors.TransientIO("creating user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.TransientIO("reading user id", err)
	}
	return domain.UserID(id), nil
}

func (r UserRepository) scanProfile(row *sql.Row) (domain.UserProfile, error) {
	var profile domain.UserProfile
	err := row.Scan(&profile.ID, &profile.Username, &profile.Nickname, &profile.ProfileImageURL)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, errors.NotFound("user not found")
	}
	if err != nil {
		return domain.UserProfile{}, errors.TransientIO("loading user", err)
	}
	return profile, nil
}
