package postgres

import (
	"context"
	"errors"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (name)
		VALUES ($1)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, room.Name).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrRoomNameTaken
		}
		return err
	}
	return nil
}

func (r *RoomRepository) Get(ctx context.Context, id int64) (*domain.Room, error) {
	var rm domain.Room
	query := `SELECT id, name, created_at FROM rooms WHERE id=$1`
	err := r.db.QueryRow(ctx, query, id).Scan(&rm.ID, &rm.Name, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func (r *RoomRepository) GetByName(ctx context.Context, name string) (*domain.Room, error) {
	var rm domain.Room
	query := `SELECT id, name, created_at FROM rooms WHERE name=$1`
	err := r.db.QueryRow(ctx, query, name).Scan(&rm.ID, &rm.Name, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func (r *RoomRepository) List(ctx context.Context, limit int, cursorStr string) ([]domain.Room, string, error) {
	cur, err := DecodeCursor(cursorStr)
	if err != nil {
		return nil, "", err
	}

	query := `
		SELECT id, name, created_at
		FROM rooms
		WHERE ($1::timestamptz IS NULL OR created_at < $1
		       OR (created_at = $1 AND id < $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, query, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.CreatedAt); err != nil {
			return nil, "", err
		}
		rooms = append(rooms, rm)
	}

	var nextCursor string
	if len(rooms) == limit {
		last := rooms[len(rooms)-1]
		nextCursor, _ = EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return rooms, nextCursor, nil
}

// Delete removes the room; its messages and memberships go with it in the
// same statement through ON DELETE CASCADE.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// AddMembers adds the given users to the room; existing memberships are kept
// as-is. The room row is locked so a concurrent room delete cannot race the
// membership insert.
func (r *RoomRepository) AddMembers(ctx context.Context, roomID int64, userIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id=$1 FOR UPDATE`, roomID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		return err
	}

	var known int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ANY($1)`, userIDs).Scan(&known); err != nil {
		return err
	}
	if known != len(userIDs) {
		return domain.ErrUserNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO room_members (room_id, user_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, roomID, userIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListMembers returns the room's members in ascending user id order so that
// callers walking the member set are deterministic.
func (r *RoomRepository) ListMembers(ctx context.Context, roomID int64) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.user_name, u.user_image, u.created_at
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY u.id ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.ImagePath, &u.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}
