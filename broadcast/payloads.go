package broadcast

import (
	"time"

	"roomchat/domain"
)

// UserEventKind labels frames on the room users topic.
type UserEventKind string

const (
	UserEventEnter       UserEventKind = "ENTER"
	UserEventLeft        UserEventKind = "LEFT"
	UserEventKicked      UserEventKind = "KICKED"
	UserEventRoomDeleted UserEventKind = "ROOM_DELETED"
	UserEventNickChange  UserEventKind = "NICK_CHANGE"
)

// ChatMessagePayload is the enriched message frame on room/{id}/public.
// For UPDATE kinds clients replace the message with the same id; for
// DELETE kinds they remove it.
type ChatMessagePayload struct {
	MessageID       domain.MessageID   `json:"messageId"`
	RoomID          domain.RoomID      `json:"roomId"`
	AuthorID        domain.UserID      `json:"authorId"`
	AuthorName      string             `json:"authorName"`
	Content         string             `json:"content"`
	Kind            domain.MessageKind `json:"msgType"`
	ParentID        *domain.MessageID  `json:"parentId,omitempty"`
	ProfileImageURL string             `json:"profileImageUrl"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// UserEventPayload is the frame on room/{id}/users.
type UserEventPayload struct {
	Event           UserEventKind `json:"event"`
	UserID          domain.UserID `json:"userId"`
	Nickname        string        `json:"nickname,omitempty"`
	Role            domain.Role   `json:"role,omitempty"`
	ProfileImageURL string        `json:"profileImageUrl,omitempty"`
}

// NotificationPayload is the frame on user/{id}/notifications.
type NotificationPayload struct {
	ID        uint64                  `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Content   string                  `json:"content"`
	RelatedID int64                   `json:"relatedId,omitempty"`
	Metadata  string                  `json:"metadata,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

func NotificationPayloadFrom(n domain.Notification) NotificationPayload {
	return NotificationPayload{
		ID:        n.ID,
		Type:      n.Type,
		Content:   n.Content,
		RelatedID: n.RelatedID,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}
}

// PresenceChangePayload rides inside a PRESENCE_UPDATE notification.
type PresenceChangePayload struct {
	UserID   domain.UserID `json:"userId"`
	Nickname string        `json:"nickname"`
	Online   bool          `json:"online"`
}

// ProfileImage resolves a stored profile image path against the static
// URL prefix, falling back to the default avatar for blank values.
func ProfileImage(prefix, stored string) string {
	if stored == "" {
		return prefix + "/default.png"
	}
	return prefix + "/" + stored
}

func MessagePayload(msg domain.Message, profileImageURL string) ChatMessagePayload {
	return ChatMessagePayload{
		MessageID:       msg.ID,
		RoomID:          msg.RoomID,
		AuthorID:        msg.AuthorID,
		AuthorName:      msg.AuthorName,
		Content:         msg.Content,
		Kind:            msg.Kind,
		ParentID:        msg.ParentID,
		ProfileImageURL: profileImageURL,
		CreatedAt:       msg.CreatedAt,
	}
}
