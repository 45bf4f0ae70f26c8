package wordwar

import (
	"fmt"
	"time"
)

// Status is the lifecycle stage of a word war. Transitions are strictly
// forward: waiting -> running -> finished.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

// WordWar is a time-boxed writing sprint scoped to one event. The round
// timer starts when the host starts the war, not when it is created, so
// StartsAt and EndsAt stay nil while the war is waiting.
type WordWar struct {
	ID                string
	EventID           string
	RequestedByUserID string
	DurationMinutes   int
	StartsAt          *time.Time
	EndsAt            *time.Time
	FinishedAt        *time.Time
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (w WordWar) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("word war id is required")
	}
	if w.EventID == "" {
		return fmt.Errorf("event id is required")
	}
	if w.RequestedByUserID == "" {
		return fmt.Errorf("requested by user id is required")
	}
	if w.DurationMinutes <= 0 {
		return fmt.Errorf("duration must be greater than zero")
	}

	return nil
}

// ExpiredAt reports whether a running war's round has elapsed at t.
func (w WordWar) ExpiredAt(t time.Time) bool {
	return w.Status == StatusRunning && w.EndsAt != nil && !t.Before(*w.EndsAt)
}

// Participant is one user's enrollment in a word war. WordsInRound is
// monotonically non-decreasing across checkpoint submissions.
type Participant struct {
	ID           string
	WordWarID    string
	UserID       string
	ProjectID    string
	WordsInRound int
	JoinedAt     time.Time
	UpdatedAt    time.Time
}

// FinalRank is one row of the standings snapshot captured when a war
// finishes. Immutable once persisted.
type FinalRank struct {
	WordWarID     string
	ParticipantID string
	UserID        string
	ProjectID     string
	WordsInRound  int
	Rank          int
}

// ScoreboardEntry is one line of the live or final scoreboard.
type ScoreboardEntry struct {
	ParticipantID string
	UserID        string
	ProjectID     string
	WordsInRound  int
	Rank          int
}

// Scoreboard is the read model for one war: live standings while the war
// is waiting or running, the persisted final ranks once finished.
type Scoreboard struct {
	War     WordWar
	Final   bool
	Entries []ScoreboardEntry
}
