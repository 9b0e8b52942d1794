package postgres

import (
	"context"
	"errors"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create validates and inserts in one transaction. The room row is locked
// first, which makes the existence check and the insert atomic (the room
// cannot be deleted in between) and serializes writers per room so assigned
// timestamps never go backwards.
func (r *MessageRepository) Create(ctx context.Context, roomID, userID int64, text string) (*domain.ChatMessage, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id=$1 FOR UPDATE`, roomID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	var member bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id=$1 AND user_id=$2)`,
		roomID, userID).Scan(&member); err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrUserNotFound
	}

	// created time is clamped to the room's newest message, so the per-room
	// ordering key (timestamp, id) is monotonic even under clock jitter
	m := domain.ChatMessage{RoomID: roomID, UserID: userID, Text: text}
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (room_id, user_id, message, "timestamp")
		VALUES ($1, $2, $3, GREATEST(
			now(),
			COALESCE((SELECT MAX("timestamp") FROM messages WHERE room_id=$1), now())
		))
		RETURNING id, "timestamp"
	`, roomID, userID, text).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByRoomAndUser returns one member's messages in a room, oldest first.
func (r *MessageRepository) ListByRoomAndUser(ctx context.Context, roomID, userID int64) ([]domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, user_id, message, "timestamp"
		FROM messages
		WHERE room_id=$1 AND user_id=$2
		ORDER BY "timestamp" ASC, id ASC
	`, roomID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
