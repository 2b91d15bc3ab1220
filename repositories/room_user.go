//go:generate go run go.uber.org/mock/mockgen -source=room_user.go -destination=../mocks/mock_room_user_repository.go -package=mocks
package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"roomchat/domain"
	"roomchat/errors"
)

type IRoomUserRepository interface {
	Save(ctx context.Context, m domain.Membership) error
	Exists(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error)
	Find(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (domain.Membership, error)
	GetRole(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (domain.Role, error)
	GetNickname(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (string, error)
	UpdateNickname(ctx context.Context, roomID domain.RoomID, userID domain.UserID, nickname string) error
	Delete(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error
	FindUsersByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.RoomUser, error)
	FindRoomsByUser(ctx context.Context, userID domain.UserID) ([]domain.RoomListing, error)
}

// RoomUserRepository persists memberships: the (room, user) pairs with a
// role and a room-scoped nickname.
type RoomUserRepository struct {
	store *Store
	log   *slog.Logger
}

func NewRoomUserRepository(store *Store, log *slog.Logger) RoomUserRepository {
	return RoomUserRepository{store: store, log: log}
}

func (r RoomUserRepository) Save(ctx context.Context, m domain.Membership) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO chat_room_users (room_id, user_id, nickname, role) VALUES (?, ?, ?, ?)`,
		m.RoomID, m.UserID, m.Nickname, string(m.Role))
	if err != nil {
		return errors.TransientIO("saving membership", err)
	}
	return nil
}

func (r RoomUserRepository) Exists(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	var one int
	err := r.store.db.QueryRowContext(ctx,
		`SELECT 1 FROM chat_room_users WHERE room_id = ? AND user_id = ?`, roomID, userID).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.TransientIO("checking membership", err)
	}
	return true, nil
}

func (r RoomUserRepository) Find(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (domain.Membership, error) {
	var m domain.Membership
	var role string
	err := r.store.db.QueryRowContext(ctx,
		`SELECT room_id, user_id, nickname, role FROM chat_room_users WHERE room_id = ? AND user_id = ?`,
		roomID, userID).Scan(&m.RoomID, &m.UserID, &m.Nickname, &role)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Membership{}, errors.NotFound("membership not found")
	}
	if err != nil {
		return domain.Membership{}, errors.TransientIO("loading membership", err)
	}
	m.Role = domain.Role(role)
	return m, nil
}

func (r RoomUserRepository) GetRole(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (domain.Role, error) {
	m, err := r.Find(ctx, roomID, userID)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

func (r RoomUserRepository) GetNickname(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (string, error) {
	m, err := r.Find(ctx, roomID, userID)
	if err != nil {
		return "", err
	}
	return m.Nickname, nil
}

func (r RoomUserRepository) UpdateNickname(ctx context.Context, roomID domain.RoomID, userID domain.UserID, nickname string) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE chat_room_users SET nickname = ? WHERE room_id = ? AND user_id = ?`,
		nickname, roomID, userID)
	if err != nil {
		return errors.TransientIO("updating nickname", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("membership not found")
	}
	return nil
}

func (r RoomUserRepository) Delete(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM chat_room_users WHERE room_id = ? AND user_id = ?`, roomID, userID)
	if err != nil {
		return errors.TransientIO("deleting membership", err)
	}
	return nil
}

// FindUsersByRoom returns room members with their profile image; the
// Connected flag is filled in by the service from the registry.
func (r RoomUserRepository) FindUsersByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.RoomUser, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT m.user_id, m.nickname, m.role, COALESCE(u.profile_image_url, '')
		FROM chat_room_users m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = ?
		ORDER BY m.user_id`, roomID)
	if err != nil {
		return nil, errors.TransientIO("listing room users", err)
	}
	defer rows.Close()

	var users []domain.RoomUser
	for rows.Next() {
		var u domain.RoomUser
		var role string
		if err := rows.Scan(&u.UserID, &u.Nickname, &role, &u.ProfileImageURL); err != nil {
			return nil, errors.TransientIO("scanning room user", err)
		}
		u.Role = domain.Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TransientIO("iterating room users", err)
	}
	return users, nil
}

func (r RoomUserRepository) FindRoomsByUser(ctx context.Context, userID domain.UserID) ([]domain.RoomListing, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.room_type, o.nickname,
		       (SELECT COUNT(*) FROM chat_room_users c WHERE c.room_id = r.id)
		FROM chat_room_users m
		JOIN chat_rooms r ON r.id = m.room_id
		JOIN users o ON o.id = r.owner_id
		WHERE m.user_id = ?
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, errors.TransientIO("listing user rooms", err)
	}
	defer rows.Close()

	var listings []domain.RoomListing
	for rows.Next() {
		var l domain.RoomListing
		var visibility string
		if err := rows.Scan(&l.ID, &l.Name, &visibility, &l.OwnerNickname, &l.MemberCount); err != nil {
			return nil, errors.TransientIO("scanning user room", err)
		}
		l.Visibility = domain.Visibility(visibility)
		l.Joined = true
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TransientIO("iterating user rooms", err)
	}
	return listings, nil
}
