package usecase

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quilldesk/wordwar/internal/domain/wordwar"
	"github.com/quilldesk/wordwar/internal/infrastructure/repository/memory"
	"github.com/quilldesk/wordwar/internal/platform/logging"
)

type sequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

func newTestService(t *testing.T) (*WordWarService, *memory.WordWarRepository) {
	t.Helper()

	warRepo := memory.NewWordWarRepository()
	service := NewWordWarService(
		memory.NewEventRepository(memory.SeedEvents()),
		memory.NewProjectRepository(memory.SeedProjects()),
		warRepo,
		&sequenceIDGenerator{prefix: "id"},
		logging.NewNop(),
	)

	return service, warRepo
}

func TestWordWarService_CreateStartJoin(t *testing.T) {
	service, _ := newTestService(t)

	createdAt := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return createdAt }

	war, err := service.Create(t.Context(), CreateWordWarInput{
		EventID:           memory.EventIDNovemberSprint,
		RequestedByUserID: memory.ProjectOwnerAlice,
		DurationMinutes:   10,
	})
	if err != nil {
		t.Fatalf("create word war: %v", err)
	}
	if war.Status != wordwar.StatusWaiting {
		t.Fatalf("expected waiting status, got %s", war.Status)
	}
	if war.StartsAt != nil || war.EndsAt != nil {
		t.Fatal("expected round window unset before start")
	}

	err = service.Join(t.Context(), JoinWordWarInput{
		WarID:     war.ID,
		UserID:    memory.ProjectOwnerAlice,
		ProjectID: memory.ProjectIDNovelDraft,
	})
	if err != nil {
		t.Fatalf("join word war: %v", err)
	}
	err = service.Join(t.Context(), JoinWordWarInput{
		WarID:     war.ID,
		UserID:    memory.ProjectOwnerBram,
		ProjectID: memory.ProjectIDShortStory,
	})
	if err != nil {
		t.Fatalf("second user join: %v", err)
	}

	startedAt := createdAt.Add(3 * time.Minute)
	service.now = func() time.Time { return startedAt }

	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("start word war: %v", err)
	}

	board, err := service.Scoreboard(t.Context(), war.ID)
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	if board.War.Status != wordwar.StatusRunning {
		t.Fatalf("expected running status, got %s", board.War.Status)
	}
	if board.War.StartsAt == nil || !board.War.StartsAt.Equal(startedAt) {
		t.Fatalf("expected starts at %v, got %v", startedAt, board.War.StartsAt)
	}
	wantEndsAt := startedAt.Add(10 * time.Minute)
	if board.War.EndsAt == nil || !board.War.EndsAt.Equal(wantEndsAt) {
		t.Fatalf("expected ends at %v, got %v", wantEndsAt, board.War.EndsAt)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(board.Entries))
	}
	for _, entry := range board.Entries {
		if entry.WordsInRound != 0 {
			t.Fatalf("expected zero words on join, got %d", entry.WordsInRound)
		}
	}
}

func TestWordWarService_Create_Guards(t *testing.T) {
	service, _ := newTestService(t)
	service.now = func() time.Time { return time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC) }

	_, err := service.Create(t.Context(), CreateWordWarInput{
		EventID:           memory.EventIDNovemberSprint,
		RequestedByUserID: memory.ProjectOwnerAlice,
		DurationMinutes:   0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero duration, got %v", err)
	}

	_, err = service.Create(t.Context(), CreateWordWarInput{
		EventID:           "ev-unknown",
		RequestedByUserID: memory.ProjectOwnerAlice,
		DurationMinutes:   10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown event, got %v", err)
	}

	_, err = service.Create(t.Context(), CreateWordWarInput{
		EventID:           memory.EventIDClosedBeta,
		RequestedByUserID: memory.ProjectOwnerAlice,
		DurationMinutes:   10,
	})
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule for inactive event, got %v", err)
	}

	if _, err = service.Create(t.Context(), CreateWordWarInput{
		EventID:           memory.EventIDNovemberSprint,
		RequestedByUserID: memory.ProjectOwnerAlice,
		DurationMinutes:   10,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = service.Create(t.Context(), CreateWordWarInput{
		EventID:           memory.EventIDNovemberSprint,
		RequestedByUserID: memory.ProjectOwnerBram,
		DurationMinutes:   15,
	})
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule for second open war, got %v", err)
	}
}

func TestWordWarService_JoinLeave_Idempotent(t *testing.T) {
	service, warRepo := newTestService(t)
	service.now = func() time.Time { return time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC) }

	war := mustCreateWar(t, service, 10)

	join := JoinWordWarInput{
		WarID:     war.ID,
		UserID:    memory.ProjectOwnerAlice,
		ProjectID: memory.ProjectIDNovelDraft,
	}
	if err := service.Join(t.Context(), join); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := service.Join(t.Context(), join); err != nil {
		t.Fatalf("second join should be idempotent: %v", err)
	}
	participants, err := warRepo.ListParticipants(t.Context(), war.ID)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(participants) != 1 {
		t.Fatalf("expected one participant row, got %d", len(participants))
	}

	if err := service.Leave(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("first leave: %v", err)
	}
	if err := service.Leave(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("second leave should be idempotent: %v", err)
	}
	participants, err = warRepo.ListParticipants(t.Context(), war.ID)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(participants) != 0 {
		t.Fatalf("expected no participant rows, got %d", len(participants))
	}
}

func TestWordWarService_Join_Guards(t *testing.T) {
	service, _ := newTestService(t)
	service.now = func() time.Time { return time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC) }

	war := mustCreateWar(t, service, 10)

	err := service.Join(t.Context(), JoinWordWarInput{
		WarID:     "ww-missing",
		UserID:    memory.ProjectOwnerAlice,
		ProjectID: memory.ProjectIDNovelDraft,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing war, got %v", err)
	}

	// Bram does not own Alice's project.
	err = service.Join(t.Context(), JoinWordWarInput{
		WarID:     war.ID,
		UserID:    memory.ProjectOwnerBram,
		ProjectID: memory.ProjectIDNovelDraft,
	})
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule for foreign project, got %v", err)
	}

	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("start: %v", err)
	}

	err = service.Join(t.Context(), JoinWordWarInput{
		WarID:     war.ID,
		UserID:    memory.ProjectOwnerAlice,
		ProjectID: memory.ProjectIDNovelDraft,
	})
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule joining a running war, got %v", err)
	}
	err = service.Leave(t.Context(), war.ID, memory.ProjectOwnerAlice)
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule leaving a running war, got %v", err)
	}
}

func TestWordWarService_Checkpoint_Monotonicity(t *testing.T) {
	service, warRepo := newTestService(t)
	now := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	war := mustCreateWar(t, service, 10)
	mustJoin(t, service, war.ID, memory.ProjectOwnerAlice, memory.ProjectIDNovelDraft)
	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("start: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if err := service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerAlice,
		WordsInRound: 50,
	}); err != nil {
		t.Fatalf("checkpoint 50: %v", err)
	}

	err := service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerAlice,
		WordsInRound: 30,
	})
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule for decreasing count, got %v", err)
	}

	// Same value resubmitted: idempotent success, no write.
	if err := service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerAlice,
		WordsInRound: 50,
	}); err != nil {
		t.Fatalf("checkpoint same value: %v", err)
	}

	participant, exists, err := warRepo.GetParticipant(t.Context(), war.ID, memory.ProjectOwnerAlice)
	if err != nil || !exists {
		t.Fatalf("get participant: exists=%v err=%v", exists, err)
	}
	if participant.WordsInRound != 50 {
		t.Fatalf("expected stored words 50, got %d", participant.WordsInRound)
	}

	err = service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerAlice,
		WordsInRound: -1,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative count, got %v", err)
	}

	err = service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerBram,
		WordsInRound: 10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-participant, got %v", err)
	}
}

func TestWordWarService_Checkpoint_AutoFinishAfterExpiry(t *testing.T) {
	service, warRepo := newTestService(t)
	now := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	war := mustCreateWar(t, service, 10)
	mustJoin(t, service, war.ID, memory.ProjectOwnerAlice, memory.ProjectIDNovelDraft)
	mustJoin(t, service, war.ID, memory.ProjectOwnerBram, memory.ProjectIDShortStory)
	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("start: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if err := service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerAlice,
		WordsInRound: 420,
	}); err != nil {
		t.Fatalf("in-round checkpoint: %v", err)
	}

	// One second past the round end.
	now = now.Add(5*time.Minute + time.Second)
	err := service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerBram,
		WordsInRound: 500,
	})
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule for late checkpoint, got %v", err)
	}

	current, exists, err := warRepo.GetByID(t.Context(), war.ID)
	if err != nil || !exists {
		t.Fatalf("get war: exists=%v err=%v", exists, err)
	}
	if current.Status != wordwar.StatusFinished {
		t.Fatalf("expected finished war after expiry, got %s", current.Status)
	}

	ranks, err := warRepo.ListFinalRanks(t.Context(), war.ID)
	if err != nil {
		t.Fatalf("list final ranks: %v", err)
	}
	if len(ranks) != 2 {
		t.Fatalf("expected 2 final ranks, got %d", len(ranks))
	}
	if ranks[0].UserID != memory.ProjectOwnerAlice || ranks[0].WordsInRound != 420 || ranks[0].Rank != 1 {
		t.Fatalf("unexpected winner rank: %+v", ranks[0])
	}
	// Bram's late 500 must not be recorded.
	if ranks[1].WordsInRound != 0 {
		t.Fatalf("late checkpoint leaked into ranks: %+v", ranks[1])
	}

	// A second late checkpoint sees the already-finished war and is still
	// rejected the same way.
	err = service.Checkpoint(t.Context(), CheckpointInput{
		WarID:        war.ID,
		UserID:       memory.ProjectOwnerBram,
		WordsInRound: 510,
	})
	if !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule for checkpoint on finished war, got %v", err)
	}
}

func TestWordWarService_ForwardOnlyTransitions(t *testing.T) {
	service, _ := newTestService(t)
	now := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	war := mustCreateWar(t, service, 10)

	// Finish before start is rejected.
	if err := service.Finish(t.Context(), war.ID); !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule finishing a waiting war, got %v", err)
	}

	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("start: %v", err)
	}
	// A second direct start call on a running war violates the guard.
	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerBram); !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule starting a running war, got %v", err)
	}

	if err := service.Finish(t.Context(), war.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := service.Finish(t.Context(), war.ID); !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule finishing a finished war, got %v", err)
	}
	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerAlice); !errors.Is(err, ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule restarting a finished war, got %v", err)
	}
}

func TestWordWarService_Scoreboard_FinalRanking(t *testing.T) {
	service, _ := newTestService(t)
	now := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	war := mustCreateWar(t, service, 10)
	mustJoin(t, service, war.ID, memory.ProjectOwnerAlice, memory.ProjectIDNovelDraft)
	now = now.Add(time.Second)
	mustJoin(t, service, war.ID, memory.ProjectOwnerBram, memory.ProjectIDShortStory)
	now = now.Add(time.Second)
	mustJoin(t, service, war.ID, memory.ProjectOwnerClaudine, memory.ProjectIDMemoir)

	if err := service.Start(t.Context(), war.ID, memory.ProjectOwnerAlice); err != nil {
		t.Fatalf("start: %v", err)
	}

	now = now.Add(time.Minute)
	mustCheckpoint(t, service, war.ID, memory.ProjectOwnerBram, 300)
	mustCheckpoint(t, service, war.ID, memory.ProjectOwnerAlice, 120)
	// Claudine ties with Alice; the earlier joiner places ahead.
	mustCheckpoint(t, service, war.ID, memory.ProjectOwnerClaudine, 120)

	if err := service.Finish(t.Context(), war.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	board, err := service.Scoreboard(t.Context(), war.ID)
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	if !board.Final {
		t.Fatal("expected final scoreboard after finish")
	}
	wantOrder := []string{memory.ProjectOwnerBram, memory.ProjectOwnerAlice, memory.ProjectOwnerClaudine}
	if len(board.Entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(board.Entries))
	}
	for i, userID := range wantOrder {
		if board.Entries[i].UserID != userID {
			t.Fatalf("rank %d: expected %s, got %s", i+1, userID, board.Entries[i].UserID)
		}
		if board.Entries[i].Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, board.Entries[i].Rank)
		}
	}
}

func mustCreateWar(t *testing.T, service *WordWarService, durationMinutes int) wordwar.WordWar {
	t.Helper()

	war, err := service.Create(t.Context(), CreateWordWarInput{
		EventID:           memory.EventIDNovemberSprint,
		RequestedByUserID: memory.ProjectOwnerAlice,
		DurationMinutes:   durationMinutes,
	})
	if err != nil {
		t.Fatalf("create word war: %v", err)
	}
	return war
}

func mustJoin(t *testing.T, service *WordWarService, warID, userID, projectID string) {
	t.Helper()

	if err := service.Join(t.Context(), JoinWordWarInput{WarID: warID, UserID: userID, ProjectID: projectID}); err != nil {
		t.Fatalf("join war for %s: %v", userID, err)
	}
}

func mustCheckpoint(t *testing.T, service *WordWarService, warID, userID string, words int) {
	t.Helper()

	if err := service.Checkpoint(t.Context(), CheckpointInput{WarID: warID, UserID: userID, WordsInRound: words}); err != nil {
		t.Fatalf("checkpoint for %s: %v", userID, err)
	}
}
