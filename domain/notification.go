package domain

import "time"

type NotificationType string

const (
	NotificationMention        NotificationType = "MENTION"
	NotificationRoomInvitation NotificationType = "ROOM_INVITATION"
	NotificationPresenceUpdate NotificationType = "PRESENCE_UPDATE"
	NotificationFriendRequest  NotificationType = "FRIEND_REQUEST"
	NotificationFriendAccepted NotificationType = "FRIEND_ACCEPTED"
)

// Notification is a per-user record delivered on the user's private topic.
// Metadata is an opaque JSON payload whose shape depends on the type.
type Notification struct {
	ID        uint64
	UserID    UserID
	Type      NotificationType
	Content   string
	RelatedID int64
	Metadata  string
	Read      bool
	CreatedAt time.Time
}
