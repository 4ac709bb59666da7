package models

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is one of the two allowed sender tags.
func (s Sender) Valid() bool { return s == SenderUser || s == SenderBot }

// Message is one immutable chat-log entry. ID is assigned exactly once from
// the message counter; it is never reused even when the insert that follows
// the assignment fails.
type Message struct {
	ID        int64     `bson:"id" json:"id"`
	Text      string    `bson:"text" json:"text"`
	Sender    Sender    `bson:"sender" json:"sender"`
	UserID    int64     `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Counter is a single-field document holding the last-issued sequence value
// for one id space ("message_id", "user_id"). It only ever moves forward via
// an atomic increment-and-read.
type Counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
