package domain

import "time"

type MessageID int64

// MessageKind classifies a chat message. DELETE and UPDATE are synthetic
// follow-ups: they tell clients to retract or replace an earlier id, they
// never introduce new content of their own.
type MessageKind string

const (
	KindText   MessageKind = "TEXT"
	KindImage  MessageKind = "IMAGE"
	KindVideo  MessageKind = "VIDEO"
	KindFile   MessageKind = "FILE"
	KindDelete MessageKind = "DELETE"
	KindUpdate MessageKind = "UPDATE"
)

// Message is a persisted chat event. Ids are assigned monotonically at
// persistence time and double as the history pagination cursor.
type Message struct {
	ID         MessageID
	RoomID     RoomID
	AuthorID   UserID
	AuthorName string
	Content    string
	Kind       MessageKind
	ParentID   *MessageID
	CreatedAt  time.Time
}
