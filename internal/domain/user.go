package domain

import "time"

type User struct {
	ID        int64     `db:"id"`
	Name      string    `db:"user_name"`
	ImagePath *string   `db:"user_image"`
	CreatedAt time.Time `db:"created_at"`
}
