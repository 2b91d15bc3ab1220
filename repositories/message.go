//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"time"

	"roomchat/domain"
	"roomchat/errors"
)

type IMessageRepository interface {
	Save(ctx context.Context, message domain.Message) (domain.Message, error)
	FindByID(ctx context.Context, id domain.MessageID) (domain.Message, error)
	Update(ctx context.Context, message domain.Message) error
	Delete(ctx context.Context, id domain.MessageID) error
	FindByCursor(ctx context.Context, roomID domain.RoomID, beforeID *domain.MessageID, limit int) ([]domain.Message, error)
	CountByRoom(ctx context.Context, roomID domain.RoomID) (int, error)
}

type MessageRepository struct {
	store *Store
	log   *slog.Logger
}

func NewMessageRepository(store *Store, log *slog.Logger) MessageRepository {
	return MessageRepository{store: store, log: log}
}

// Save persists the message and returns it with the id the database
// assigned. Id order reflects arrival order and drives pagination.
func (r MessageRepository) Save(ctx context.Context, message domain.Message) (domain.Message, error) {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	res, err := r.store.db.ExecContext(ctx, `
		INSERT INTO messages (room_id, author_id, author_name, content, msg_type, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		message.RoomID, message.AuthorID, message.AuthorName, message.Content,
		string(message.Kind), nullableID(message.ParentID), message.CreatedAt.UnixMilli())
	if err != nil {
		return domain.Message{}, errors.TransientIO("saving message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Message{}, errors.TransientIO("reading message id", err)
	}
	message.ID = domain.MessageID(id)
	return message, nil
}

func (r MessageRepository) FindByID(ctx context.Context, id domain.MessageID) (domain.Message, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, room_id, author_id, author_name, content, msg_type, parent_id, created_at
		FROM messages WHERE id = ?`, id)
	msg, err := scanMessage(row.Scan)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, errors.NotFound("message not found")
	}
	if err != nil {
		return domain.Message{}, errors.TransientIO("loading message", err)
	}
	return msg, nil
}

// Update mutates content and kind in place; edits flip the kind to
// UPDATE so clients replace the message by id.
func (r MessageRepository) Update(ctx context.Context, message domain.Message) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE messages SET content = ?, msg_type = ? WHERE id = ?`,
		message.Content, string(message.Kind), message.ID)
	if err != nil {
		return errors.TransientIO("updating message", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("message not found")
	}
	return nil
}

func (r MessageRepository) Delete(ctx context.Context, id domain.MessageID) error {
	_, err := r.store.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return errors.TransientIO("deleting message", err)
	}
	return nil
}

// FindByCursor returns up to limit messages older than beforeID (all of
// the most recent ones when beforeID is nil), in chronological order.
// Internally the query walks ids descending and the slice is reversed
// before returning.
func (r MessageRepository) FindByCursor(ctx context.Context, roomID domain.RoomID, beforeID *domain.MessageID, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, room_id, author_id, author_name, content, msg_type, parent_id, created_at
		FROM messages WHERE room_id = ?`
	args := []any{roomID}
	if beforeID != nil {
		query += ` AND id < ?`
		args = append(args, *beforeID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.TransientIO("querying messages", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, errors.TransientIO("scanning message", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TransientIO("iterating messages", err)
	}

	// Oldest first for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r MessageRepository) CountByRoom(ctx context.Context, roomID domain.RoomID) (int, error) {
	var count int
	err := r.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE room_id = ?`, roomID).Scan(&count)
	if err != nil {
		return 0, errors.TransientIO("counting messages", err)
	}
	return count, nil
}

func scanMessage(scan func(dest ...any) error) (domain.Message, error) {
	var msg domain.Message
	var kind string
	var parentID sql.NullInt64
	var createdAt int64
	err := scan(&msg.ID, &msg.RoomID, &msg.AuthorID, &msg.AuthorName,
		&msg.Content, &kind, &parentID, &createdAt)
	if err != nil {
		return domain.Message{}, err
	}
	msg.Kind = domain.MessageKind(kind)
	msg.CreatedAt = time.UnixMilli(createdAt).UTC()
	if parentID.Valid {
		id := domain.MessageID(parentID.Int64)
		msg.ParentID = &id
	}
	return msg, nil
}

func nullableID(id *domain.MessageID) any {
	if id == nil {
		return nil
	}
	return int64(*id)
}
