package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/quilldesk/wordwar/internal/infrastructure/repository/memory"
	"github.com/quilldesk/wordwar/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRecapService_Recap(t *testing.T) {
	warRepo := memory.NewWordWarRepository()
	eventRepo := memory.NewEventRepository(memory.SeedEvents())
	warService := NewWordWarService(
		eventRepo,
		memory.NewProjectRepository(memory.SeedProjects()),
		warRepo,
		&sequenceIDGenerator{prefix: "id"},
		logging.NewNop(),
	)

	now := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	warService.now = func() time.Time { return now }

	words := []int{150, 275, 90}
	for round, wordCount := range words {
		war := mustCreateWar(t, warService, 5)
		mustJoin(t, warService, war.ID, memory.ProjectOwnerAlice, memory.ProjectIDNovelDraft)
		require.NoError(t, warService.Start(t.Context(), war.ID, memory.ProjectOwnerAlice))
		mustCheckpoint(t, warService, war.ID, memory.ProjectOwnerAlice, wordCount)
		require.NoError(t, warService.Finish(t.Context(), war.ID), "finish round %d", round)
		now = now.Add(10 * time.Minute)
	}

	recapService := NewEventRecapService(eventRepo, warRepo, warService, 2)

	recap, err := recapService.Recap(t.Context(), memory.EventIDNovemberSprint)
	require.NoError(t, err)
	assert.Equal(t, memory.EventIDNovemberSprint, recap.Event.ID)
	require.Len(t, recap.Wars, len(words))

	// Recap preserves the chronological order of the finished wars.
	for i, board := range recap.Wars {
		assert.True(t, board.Final, "war %d should carry final ranks", i)
		require.Len(t, board.Entries, 1)
		assert.Equal(t, words[i], board.Entries[0].WordsInRound)
	}
}

func TestEventRecapService_Recap_EmptyAndMissing(t *testing.T) {
	eventRepo := memory.NewEventRepository(memory.SeedEvents())
	warRepo := memory.NewWordWarRepository()
	warService := NewWordWarService(
		eventRepo,
		memory.NewProjectRepository(memory.SeedProjects()),
		warRepo,
		&sequenceIDGenerator{prefix: "id"},
		logging.NewNop(),
	)
	recapService := NewEventRecapService(eventRepo, warRepo, warService, 0)

	recap, err := recapService.Recap(t.Context(), memory.EventIDSummerCamp)
	require.NoError(t, err)
	assert.Empty(t, recap.Wars)

	_, err = recapService.Recap(t.Context(), "ev-unknown")
	assert.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)

	_, err = recapService.Recap(t.Context(), "  ")
	assert.True(t, errors.Is(err, ErrInvalidInput), "expected ErrInvalidInput, got %v", err)
}
