package domain

// Role is deliberately a tagged variant rather than a boolean so finer
// grained roles can be added without widening call sites.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Membership binds a user to a room with a role and a per-room nickname.
// A room has exactly one ADMIN membership: its owner.
type Membership struct {
	RoomID   RoomID
	UserID   UserID
	Nickname string
	Role     Role
}

// RoomUser is a membership decorated with presence data for room views.
type RoomUser struct {
	UserID          UserID
	Nickname        string
	Role            Role
	Connected       bool
	ProfileImageURL string
}
