package memory

import (
	"time"

	"github.com/quilldesk/wordwar/internal/domain/event"
	"github.com/quilldesk/wordwar/internal/domain/project"
)

const (
	EventIDNovemberSprint = "ev-november-sprint-2026"
	EventIDSummerCamp     = "ev-summer-camp-2026"
	EventIDClosedBeta     = "ev-closed-beta-2025"

	ProjectIDNovelDraft  = "prj-novel-draft"
	ProjectIDShortStory  = "prj-short-story"
	ProjectIDMemoir      = "prj-memoir"
	ProjectOwnerAlice    = "user-alice"
	ProjectOwnerBram     = "user-bram"
	ProjectOwnerClaudine = "user-claudine"
)

// SeedEvents returns fixture events for tests and DB-less local runs. The
// november sprint window is generous so "now" falls inside it for years.
func SeedEvents() []event.Event {
	return []event.Event{
		{
			ID:       EventIDNovemberSprint,
			Title:    "November Writing Sprint",
			IsActive: true,
			StartsAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:       EventIDSummerCamp,
			Title:    "Summer Writing Camp",
			IsActive: true,
			StartsAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			ID:       EventIDClosedBeta,
			Title:    "Closed Beta Event",
			IsActive: false,
			StartsAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		},
	}
}

func SeedProjects() []project.Project {
	return []project.Project{
		{ID: ProjectIDNovelDraft, OwnerUserID: ProjectOwnerAlice, Title: "Novel Draft"},
		{ID: ProjectIDShortStory, OwnerUserID: ProjectOwnerBram, Title: "Short Story Collection"},
		{ID: ProjectIDMemoir, OwnerUserID: ProjectOwnerClaudine, Title: "Memoir"},
	}
}
