package httpapi

import (
	"time"

	"github.com/quilldesk/wordwar/internal/domain/wordwar"
	"github.com/quilldesk/wordwar/internal/usecase"
)

type wordWarDTO struct {
	ID                string     `json:"id"`
	EventID           string     `json:"event_id"`
	RequestedByUserID string     `json:"requested_by_user_id"`
	DurationMinutes   int        `json:"duration_minutes"`
	Status            string     `json:"status"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type scoreboardEntryDTO struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	ProjectID    string `json:"project_id"`
	WordsInRound int    `json:"words_in_round"`
}

type scoreboardDTO struct {
	War     wordWarDTO           `json:"war"`
	Final   bool                 `json:"final"`
	Entries []scoreboardEntryDTO `json:"entries"`
}

type eventRecapDTO struct {
	EventID    string          `json:"event_id"`
	EventTitle string          `json:"event_title"`
	Wars       []scoreboardDTO `json:"wars"`
}

func wordWarToDTO(war wordwar.WordWar) wordWarDTO {
	return wordWarDTO{
		ID:                war.ID,
		EventID:           war.EventID,
		RequestedByUserID: war.RequestedByUserID,
		DurationMinutes:   war.DurationMinutes,
		Status:            string(war.Status),
		StartsAt:          war.StartsAt,
		EndsAt:            war.EndsAt,
		FinishedAt:        war.FinishedAt,
		CreatedAt:         war.CreatedAt,
	}
}

func scoreboardToDTO(board wordwar.Scoreboard) scoreboardDTO {
	entries := make([]scoreboardEntryDTO, 0, len(board.Entries))
	for _, entry := range board.Entries {
		entries = append(entries, scoreboardEntryDTO{
			Rank:         entry.Rank,
			UserID:       entry.UserID,
			ProjectID:    entry.ProjectID,
			WordsInRound: entry.WordsInRound,
		})
	}

	return scoreboardDTO{
		War:     wordWarToDTO(board.War),
		Final:   board.Final,
		Entries: entries,
	}
}

func recapToDTO(recap usecase.EventRecap) eventRecapDTO {
	wars := make([]scoreboardDTO, 0, len(recap.Wars))
	for _, board := range recap.Wars {
		wars = append(wars, scoreboardToDTO(board))
	}

	return eventRecapDTO{
		EventID:    recap.Event.ID,
		EventTitle: recap.Event.Title,
		Wars:       wars,
	}
}
