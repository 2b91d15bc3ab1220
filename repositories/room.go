//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"roomchat/domain"
	"roomchat/errors"
)

type IRoomRepository interface {
	Save(ctx context.Context, room domain.Room) (domain.RoomID, error)
	SaveWithOwner(ctx context.Context, room domain.Room, ownerNickname string) (domain.RoomID, error)
	FindByID(ctx context.Context, id domain.RoomID) (domain.Room, error)
	FindByName(ctx context.Context, name string) (domain.Room, error)
	FindAllWithCount(ctx context.Context) ([]domain.RoomListing, error)
	DeleteCascade(ctx context.Context, id domain.RoomID) error
}

type RoomRepository struct {
	store *Store
	log   *slog.Logger
}

func NewRoomRepository(store *Store, log *slog.Logger) RoomRepository {
	return RoomRepository{store: store, log: log}
}

func (r RoomRepository) Save(ctx context.Context, room domain.Room) (domain.RoomID, error) {
	res, err := r.store.db.ExecContext(ctx,
		`INSERT INTO chat_rooms (name, room_type, owner_id, password_hash) VALUES (?, ?, ?, ?)`,
		room.Name, string(room.Visibility), room.OwnerID, nullable(room.PasswordHash))
	if err != nil {
		return 0, errors.TransientIO("saving room", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.TransientIO("reading room id", err)
	}
	return domain.RoomID(id), nil
}

// SaveWithOwner creates the room and its ADMIN membership in one
// transaction so a room can never exist without its owner.
func (r RoomRepository) SaveWithOwner(ctx context.Context, room domain.Room, ownerNickname string) (domain.RoomID, error) {
	var id int64
	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chat_rooms (name, room_type, owner_id, password_hash) VALUES (?, ?, ?, ?)`,
			room.Name, string(room.Visibility), room.OwnerID, nullable(room.PasswordHash))
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chat_room_users (room_id, user_id, nickname, role) VALUES (?, ?, ?, ?)`,
			id, room.OwnerID, ownerNickname, string(domain.RoleAdmin))
		return err
	})
	if err != nil {
		return 0, errors.TransientIO("creating room", err)
	}
	return domain.RoomID(id), nil
}

func (r RoomRepository) FindByID(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	return r.scanRoom(r.store.db.QueryRowContext(ctx,
		`SELECT id, name, room_type, owner_id, COALESCE(password_hash, '') FROM chat_rooms WHERE id = ?`, id))
}

func (r RoomRepository) FindByName(ctx context.Context, name string) (domain.Room, error) {
	return r.scanRoom(r.store.db.QueryRowContext(ctx,
		`SELECT id, name, room_type, owner_id, COALESCE(password_hash, '') FROM chat_rooms WHERE name = ?`, name))
}

func (r RoomRepository) scanRoom(row *sql.Row) (domain.Room, error) {
	var room domain.Room
	var visibility string
	err := row.Scan(&room.ID, &room.Name, &visibility, &room.OwnerID, &room.PasswordHash)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, errors.NotFound("room not found")
	}
	if err != nil {
		return domain.Room{}, errors.TransientIO("loading room", err)
	}
	room.Visibility = domain.Visibility(visibility)
	return room, nil
}

// FindAllWithCount lists every room with its persisted member count.
// Connected counts are layered on top by the service from the registry.
func (r RoomRepository) FindAllWithCount(ctx context.Context) ([]domain.RoomListing, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.room_type, u.nickname,
		       (SELECT COUNT(*) FROM chat_room_users m WHERE m.room_id = r.id)
		FROM chat_rooms r
		JOIN users u ON u.id = r.owner_id
		ORDER BY r.id`)
	if err != nil {
		return nil, errors.TransientIO("listing rooms", err)
	}
	defer rows.Close()

	var listings []domain.RoomListing
	for rows.Next() {
		var l domain.RoomListing
		var visibility string
		if err := rows.Scan(&l.ID, &l.Name, &visibility, &l.OwnerNickname, &l.MemberCount); err != nil {
			return nil, errors.TransientIO("scanning room row", err)
		}
		l.Visibility = domain.Visibility(visibility)
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TransientIO("iterating room rows", err)
	}
	return listings, nil
}

// DeleteCascade removes the room's messages, memberships and finally the
// room itself in one transaction. A failure at any step rolls everything
// back.
func (r RoomRepository) DeleteCascade(ctx context.Context, id domain.RoomID) error {
	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE room_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM chat_room_users WHERE room_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM chat_rooms WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errors.NotFound("room not found")
		}
		return nil
	})
	if err != nil && !errors.IsNotFound(err) {
		return errors.TransientIO("deleting room", err)
	}
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
