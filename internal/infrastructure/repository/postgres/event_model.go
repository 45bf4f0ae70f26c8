package postgres

import "time"

type eventTableModel struct {
	ID       int64     `db:"id"`
	PublicID string    `db:"public_id"`
	Title    string    `db:"title"`
	IsActive bool      `db:"is_active"`
	StartsAt time.Time `db:"starts_at"`
	EndsAt   time.Time `db:"ends_at"`
}

type projectTableModel struct {
	ID          int64  `db:"id"`
	PublicID    string `db:"public_id"`
	OwnerUserID string `db:"owner_user_id"`
	Title       string `db:"title"`
}
