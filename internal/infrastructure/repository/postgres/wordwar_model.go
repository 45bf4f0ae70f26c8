package postgres

import "time"

type wordWarTableModel struct {
	ID                int64      `db:"id"`
	PublicID          string     `db:"public_id"`
	EventID           string     `db:"event_public_id"`
	RequestedByUserID string     `db:"requested_by_user_id"`
	DurationMinutes   int        `db:"duration_minutes"`
	Status            string     `db:"status"`
	StartsAt          *time.Time `db:"starts_at"`
	EndsAt            *time.Time `db:"ends_at"`
	FinishedAt        *time.Time `db:"finished_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

type wordWarInsertModel struct {
	PublicID          string    `db:"public_id"`
	EventID           string    `db:"event_public_id"`
	RequestedByUserID string    `db:"requested_by_user_id"`
	DurationMinutes   int       `db:"duration_minutes"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type participantTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	WarID        string    `db:"war_public_id"`
	UserID       string    `db:"user_id"`
	ProjectID    string    `db:"project_public_id"`
	WordsInRound int       `db:"words_in_round"`
	JoinedAt     time.Time `db:"joined_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type finalRankTableModel struct {
	ID            int64     `db:"id"`
	WarID         string    `db:"war_public_id"`
	ParticipantID string    `db:"participant_public_id"`
	UserID        string    `db:"user_id"`
	ProjectID     string    `db:"project_public_id"`
	WordsInRound  int       `db:"words_in_round"`
	Rank          int       `db:"rank"`
	CreatedAt     time.Time `db:"created_at"`
}
