// Package services implements the transactional business logic of the
// chat core: room lifecycle, message lifecycle, authorization and
// notification fan-out. State changes publish domain events; delivery
// happens asynchronously on the bus.
package services

import (
	"github.com/go-playground/validator/v10"

	"roomchat/domain"
	"roomchat/errors"
)

var validate = validator.New()

type CreateRoomCommand struct {
	Name       string            `validate:"required,min=1,max=64"`
	Visibility domain.Visibility `validate:"required"`
	OwnerID    domain.UserID     `validate:"required"`
	Password   string
}

type SendMessageCommand struct {
	RoomID       domain.RoomID      `validate:"required"`
	AuthorID     domain.UserID      `validate:"required"`
	Content      string             `validate:"required,max=4000"`
	Kind         domain.MessageKind `validate:"required"`
	ParentID     *domain.MessageID
	MentionedIDs []domain.UserID
}

type ChangeNicknameCommand struct {
	RoomID      domain.RoomID `validate:"required"`
	UserID      domain.UserID `validate:"required"`
	NewNickname string        `validate:"required,min=1,max=32"`
}

type HistoryQuery struct {
	RoomID   domain.RoomID `validate:"required"`
	BeginID  *domain.MessageID
	RowCount int `validate:"required,min=1,max=200"`
}

// checkCommand maps validator failures onto the Validation error code so
// callers get a stable rejection instead of library internals.
func checkCommand(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return errors.Validation(err.Error())
	}
	return nil
}
