// Package event defines the immutable domain events published by the
// room and message services. Ownership of an event transfers to the bus
// at publish time; events are fire-and-forget and never replayed.
package event

import "roomchat/domain"

// DomainEvent is the closed set of state changes the broadcast pipeline
// reacts to. Every variant is scoped to a single room.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// ExitReason explains why a user left a room.
type ExitReason string

const (
	ReasonLeft        ExitReason = "LEFT"
	ReasonKicked      ExitReason = "KICKED"
	ReasonRoomDeleted ExitReason = "ROOM_DELETED"
)

// MessageAdded fires for new messages and for synthetic UPDATE/DELETE
// follow-ups; listeners distinguish them by Message.Kind.
type MessageAdded struct {
	Message domain.Message
	Room    domain.RoomID
}

func (e MessageAdded) RoomID() domain.RoomID { return e.Room }

type UserEntered struct {
	User domain.UserProfile
	Room domain.RoomID
	Role domain.Role
}

func (e UserEntered) RoomID() domain.RoomID { return e.Room }

// UserExited carries a zero UserID when the whole room is deleted.
type UserExited struct {
	UserID domain.UserID
	Room   domain.RoomID
	Reason ExitReason
}

func (e UserExited) RoomID() domain.RoomID { return e.Room }

type NicknameChanged struct {
	UserID      domain.UserID
	Room        domain.RoomID
	NewNickname string
}

func (e NicknameChanged) RoomID() domain.RoomID { return e.Room }
