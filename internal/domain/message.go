package domain

import "time"

// MaxMessageLen limits the text body of a single chat message.
const MaxMessageLen = 900

type ChatMessage struct {
	ID        int64     `db:"id"`
	RoomID    int64     `db:"room_id"`
	UserID    int64     `db:"user_id"`
	Text      string    `db:"message"`
	CreatedAt time.Time `db:"timestamp"`
}
