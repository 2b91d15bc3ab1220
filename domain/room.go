// Package domain contains core concepts of the chat system.
// This file defines rooms and their visibility rules.
// No runtime, network, or UI logic should be added here.
package domain

type RoomID int64

// Visibility is a closed enumeration of room kinds.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityGame    Visibility = "GAME"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityGame:
		return true
	}
	return false
}

// Room is a named chat channel owned by exactly one ADMIN.
// A PRIVATE room always carries a password verifier; the name is
// immutable after creation.
type Room struct {
	ID           RoomID
	Name         string
	Visibility   Visibility
	OwnerID      UserID
	PasswordHash string
}

// RoomListing is a room row decorated with counters for lobby views.
type RoomListing struct {
	ID             RoomID
	Name           string
	Visibility     Visibility
	OwnerNickname  string
	MemberCount    int
	ConnectedCount int
	Joined         bool
}
