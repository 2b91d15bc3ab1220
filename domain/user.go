package domain

type UserID int64

// UserProfile is the slice of user state the chat core needs: display
// identity only. Credentials live behind the auth boundary.
type UserProfile struct {
	ID              UserID
	Username        string
	Nickname        string
	ProfileImageURL string
}

// FriendshipStatus tracks the lifecycle of a friend relation.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
)

type Friendship struct {
	UserID1 UserID
	UserID2 UserID
	Status  FriendshipStatus
}

// Other returns the friend on the opposite side of the relation.
func (f Friendship) Other(userID UserID) UserID {
	if f.UserID1 == userID {
		return f.UserID2
	}
	return f.UserID1
}
