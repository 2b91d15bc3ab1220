//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"roomchat/domain"
	"roomchat/errors"
)

type INotificationRepository interface {
	Save(ctx context.Context, n domain.Notification) (domain.Notification, error)
	FindByUser(ctx context.Context, userID domain.UserID, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID domain.UserID, id uint64) error
}

// NotificationRepository persists per-user notifications in BadgerDB.
// Keys are formatted as "notif:{user_id}:{seq_padded}" so a prefix scan
// per user returns notifications in arrival order; 19-digit zero padding
// keeps lexicographic and numeric order aligned.
type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) (NotificationRepository, error) {
	seq, err := db.GetSequence([]byte("seq:notifications"), 64)
	if err != nil {
		return NotificationRepository{}, fmt.Errorf("notification sequence: %w", err)
	}
	return NotificationRepository{db: db, log: log, seq: seq}, nil
}

// Release returns unused sequence ids to Badger; call on shutdown.
func (r NotificationRepository) Release() error {
	if r.seq == nil {
		return nil
	}
	return r.seq.Release()
}

func notificationKey(userID domain.UserID, id uint64) []byte {
	return []byte(fmt.Sprintf("notif:%d:%019d", userID, id))
}

func (r NotificationRepository) Save(_ context.Context, n domain.Notification) (domain.Notification, error) {
	id, err := r.seq.Next()
	if err != nil {
		return domain.Notification{}, errors.TransientIO("allocating notification id", err)
	}
	n.ID = id
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	bytes, err := json.Marshal(n)
	if err != nil {
		return domain.Notification{}, errors.TransientIO("encoding notification", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(notificationKey(n.UserID, n.ID), bytes)
	})
	if err != nil {
		return domain.Notification{}, errors.TransientIO("saving notification", err)
	}
	return n, nil
}

// FindByUser returns the most recent notifications for a user, newest
// first, walking the per-user prefix in reverse.
func (r NotificationRepository) FindByUser(_ context.Context, userID domain.UserID, limit int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("notif:%d:", userID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the highest possible key for this user, then walk back.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(notifications) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var n domain.Notification
				if err := json.Unmarshal(value, &n); err != nil {
					return err
				}
				notifications = append(notifications, n)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.TransientIO("listing notifications", err)
	}
	return notifications, nil
}

func (r NotificationRepository) MarkRead(_ context.Context, userID domain.UserID, id uint64) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := notificationKey(userID, id)
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var n domain.Notification
		err = item.Value(func(value []byte) error {
			return json.Unmarshal(value, &n)
		})
		if err != nil {
			return err
		}
		n.Read = true
		bytes, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return txn.Set(key, bytes)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.NotFound("notification not found")
	}
	if err != nil {
		return errors.TransientIO("marking notification read", err)
	}
	return nil
}
