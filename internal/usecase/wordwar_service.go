package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quilldesk/wordwar/internal/domain/event"
	"github.com/quilldesk/wordwar/internal/domain/project"
	"github.com/quilldesk/wordwar/internal/domain/wordwar"
	idgen "github.com/quilldesk/wordwar/internal/platform/id"
	"github.com/quilldesk/wordwar/internal/platform/logging"
)

// CreateWordWarInput is the incoming payload for creating a word war.
type CreateWordWarInput struct {
	EventID           string
	RequestedByUserID string
	DurationMinutes   int
}

// JoinWordWarInput is the incoming payload for joining a waiting word war.
type JoinWordWarInput struct {
	WarID     string
	UserID    string
	ProjectID string
}

// CheckpointInput is a progress report for one participant during a
// running word war.
type CheckpointInput struct {
	WarID        string
	UserID       string
	WordsInRound int
}

// WordWarService runs the word war state machine. All state lives in the
// store; correctness under concurrent callers rests on single conditional
// writes plus a reconciliation read when a write reports zero effect. The
// service never retries internally and never holds locks.
type WordWarService struct {
	eventRepo   event.Repository
	projectRepo project.Repository
	warRepo     wordwar.Repository
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewWordWarService(
	eventRepo event.Repository,
	projectRepo project.Repository,
	warRepo wordwar.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *WordWarService {
	if logger == nil {
		logger = logging.Default()
	}

	return &WordWarService{
		eventRepo:   eventRepo,
		projectRepo: projectRepo,
		warRepo:     warRepo,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// Create opens a new waiting word war inside an active event. The round
// window stays unset until Start; the duration is only fixed here.
func (s *WordWarService) Create(ctx context.Context, input CreateWordWarInput) (wordwar.WordWar, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WordWarService.Create")
	defer span.End()

	input.EventID = strings.TrimSpace(input.EventID)
	input.RequestedByUserID = strings.TrimSpace(input.RequestedByUserID)
	if input.EventID == "" {
		return wordwar.WordWar{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if input.RequestedByUserID == "" {
		return wordwar.WordWar{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.DurationMinutes <= 0 {
		return wordwar.WordWar{}, fmt.Errorf("%w: duration must be greater than zero", ErrInvalidInput)
	}

	ev, exists, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		return wordwar.WordWar{}, fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return wordwar.WordWar{}, fmt.Errorf("%w: event=%s", ErrNotFound, input.EventID)
	}

	now := s.now().UTC()
	if !ev.IsOpenAt(now) {
		return wordwar.WordWar{}, fmt.Errorf("%w: event is not active right now", ErrBusinessRule)
	}

	// Advisory read-then-create check; the store's partial unique index on
	// (event_id) WHERE status <> 'finished' closes the remaining race.
	_, exists, err = s.warRepo.FindOpenByEvent(ctx, input.EventID)
	if err != nil {
		return wordwar.WordWar{}, fmt.Errorf("find open word war by event: %w", err)
	}
	if exists {
		return wordwar.WordWar{}, fmt.Errorf("%w: a word war is already pending or running for this event", ErrBusinessRule)
	}

	warID, err := s.idGen.NewID()
	if err != nil {
		return wordwar.WordWar{}, fmt.Errorf("generate word war id: %w", err)
	}

	war := wordwar.WordWar{
		ID:                warID,
		EventID:           input.EventID,
		RequestedByUserID: input.RequestedByUserID,
		DurationMinutes:   input.DurationMinutes,
		Status:            wordwar.StatusWaiting,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := war.Validate(); err != nil {
		return wordwar.WordWar{}, fmt.Errorf("validate word war: %w", err)
	}

	if err := s.warRepo.Create(ctx, war); err != nil {
		if isDuplicateConstraintError(err) {
			return wordwar.WordWar{}, fmt.Errorf("%w: a word war is already pending or running for this event", ErrBusinessRule)
		}
		return wordwar.WordWar{}, fmt.Errorf("create word war: %w", err)
	}

	s.logger.InfoContext(ctx, "word war created",
		"war_id", war.ID,
		"event_id", war.EventID,
		"user_id", war.RequestedByUserID,
		"duration_minutes", war.DurationMinutes,
	)

	return war, nil
}

// Join enrolls a user's project into a waiting word war. Joining twice is
// a no-op success.
func (s *WordWarService) Join(ctx context.Context, input JoinWordWarInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WordWarService.Join")
	defer span.End()

	input.WarID = strings.TrimSpace(input.WarID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.ProjectID = strings.TrimSpace(input.ProjectID)
	if input.WarID == "" || input.UserID == "" {
		return fmt.Errorf("%w: war id and user id are required", ErrInvalidInput)
	}
	if input.ProjectID == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}

	war, exists, err := s.warRepo.GetByID(ctx, input.WarID)
	if err != nil {
		return fmt.Errorf("get word war by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: word war=%s", ErrNotFound, input.WarID)
	}
	if war.Status != wordwar.StatusWaiting {
		return fmt.Errorf("%w: joining is only possible while the war is waiting", ErrBusinessRule)
	}

	proj, exists, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return fmt.Errorf("get project by id: %w", err)
	}
	if !exists || !proj.IsOwnedBy(input.UserID) {
		return fmt.Errorf("%w: project does not belong to the joining user", ErrBusinessRule)
	}

	if _, exists, err = s.warRepo.GetParticipant(ctx, input.WarID, input.UserID); err != nil {
		return fmt.Errorf("get participant: %w", err)
	} else if exists {
		return nil
	}

	participantID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate participant id: %w", err)
	}

	now := s.now().UTC()
	affected, err := s.warRepo.AddParticipant(ctx, wordwar.Participant{
		ID:           participantID,
		WordWarID:    input.WarID,
		UserID:       input.UserID,
		ProjectID:    input.ProjectID,
		WordsInRound: 0,
		JoinedAt:     now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	if affected == 1 {
		s.logger.InfoContext(ctx, "participant joined word war",
			"war_id", input.WarID,
			"user_id", input.UserID,
			"project_id", input.ProjectID,
		)
		return nil
	}

	// Zero-effect insert: either a concurrent join for the same user landed
	// first, or the war left waiting. Re-read and classify.
	if _, exists, err = s.warRepo.GetParticipant(ctx, input.WarID, input.UserID); err != nil {
		return fmt.Errorf("reconcile participant after join: %w", err)
	} else if exists {
		return nil
	}

	return fmt.Errorf("%w: state conflict while joining the war", ErrBusinessRule)
}

// Leave removes a user's enrollment from a waiting word war. Leaving when
// not enrolled is a no-op success.
func (s *WordWarService) Leave(ctx context.Context, warID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WordWarService.Leave")
	defer span.End()

	warID = strings.TrimSpace(warID)
	userID = strings.TrimSpace(userID)
	if warID == "" || userID == "" {
		return fmt.Errorf("%w: war id and user id are required", ErrInvalidInput)
	}

	war, exists, err := s.warRepo.GetByID(ctx, warID)
	if err != nil {
		return fmt.Errorf("get word war by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: word war=%s", ErrNotFound, warID)
	}
	if war.Status != wordwar.StatusWaiting {
		return fmt.Errorf("%w: leaving is only possible while the war is waiting", ErrBusinessRule)
	}

	if _, exists, err = s.warRepo.GetParticipant(ctx, warID, userID); err != nil {
		return fmt.Errorf("get participant: %w", err)
	} else if !exists {
		return nil
	}

	affected, err := s.warRepo.RemoveParticipant(ctx, warID, userID)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if affected == 1 {
		s.logger.InfoContext(ctx, "participant left word war",
			"war_id", warID,
			"user_id", userID,
		)
		return nil
	}

	if _, exists, err = s.warRepo.GetParticipant(ctx, warID, userID); err != nil {
		return fmt.Errorf("reconcile participant after leave: %w", err)
	} else if !exists {
		return nil
	}

	return fmt.Errorf("%w: state conflict while leaving the war", ErrBusinessRule)
}

// Start moves a waiting war to running and stamps the round window from
// the stored duration. Of N concurrent starts exactly one write lands; the
// losers observe the war already running and report success.
func (s *WordWarService) Start(ctx context.Context, warID, requestedByUserID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WordWarService.Start")
	defer span.End()

	warID = strings.TrimSpace(warID)
	requestedByUserID = strings.TrimSpace(requestedByUserID)
	if warID == "" || requestedByUserID == "" {
		return fmt.Errorf("%w: war id and user id are required", ErrInvalidInput)
	}

	war, exists, err := s.warRepo.GetByID(ctx, warID)
	if err != nil {
		return fmt.Errorf("get word war by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: word war=%s", ErrNotFound, warID)
	}
	if war.Status != wordwar.StatusWaiting {
		return fmt.Errorf("%w: starting is only possible while the war is waiting", ErrBusinessRule)
	}
	if war.DurationMinutes <= 0 {
		// Not a caller mistake: the duration was validated at creation, so a
		// non-positive stored value means the row is corrupt.
		return fmt.Errorf("%w: stored duration is invalid for war=%s", ErrBusinessRule, warID)
	}

	startsAt := s.now().UTC()
	endsAt := startsAt.Add(time.Duration(war.DurationMinutes) * time.Minute)

	affected, err := s.warRepo.MarkRunning(ctx, warID, startsAt, endsAt)
	if err != nil {
		return fmt.Errorf("mark word war running: %w", err)
	}
	if affected == 1 {
		s.logger.InfoContext(ctx, "word war started",
			"war_id", warID,
			"user_id", requestedByUserID,
			"ends_at", endsAt,
		)
		return nil
	}

	current, exists, err := s.warRepo.GetByID(ctx, warID)
	if err != nil {
		return fmt.Errorf("reconcile word war after start: %w", err)
	}
	if exists && current.Status == wordwar.StatusRunning {
		// A concurrent start won the race; the timer is already set and must
		// not be reset.
		return nil
	}

	return fmt.Errorf("%w: state conflict while starting the war", ErrBusinessRule)
}

// Checkpoint records a participant's current word count. Expiry is checked
// lazily here: a checkpoint against an elapsed round finishes the war and
// is itself rejected.
func (s *WordWarService) Checkpoint(ctx context.Context, input CheckpointInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WordWarService.Checkpoint")
	defer span.End()

	input.WarID = strings.TrimSpace(input.WarID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.WarID == "" || input.UserID == "" {
		return fmt.Errorf("%w: war id and user id are required", ErrInvalidInput)
	}
	if input.WordsInRound < 0 {
		return fmt.Errorf("%w: word count cannot be negative", ErrInvalidInput)
	}

	war, exists, err := s.warRepo.GetByID(ctx, input.WarID)
	if err != nil {
		return fmt.Errorf("get word war by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: word war=%s", ErrNotFound, input.WarID)
	}

	now := s.now().UTC()
	if war.ExpiredAt(now) {
		// The round elapsed: finish the war first, then reject the checkpoint
		// no matter who actually won the finishing race.
		if err := s.finishWar(ctx, war.ID, now); err != nil && !errors.Is(err, ErrBusinessRule) {
			return err
		}
		return fmt.Errorf("%w: word war auto-finished by time", ErrBusinessRule)
	}
	if war.Status != wordwar.StatusRunning {
		return fmt.Errorf("%w: checkpoints are only possible while the war is running", ErrBusinessRule)
	}

	participant, exists, err := s.warRepo.GetParticipant(ctx, input.WarID, input.UserID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: participant not found for user=%s", ErrNotFound, input.UserID)
	}

	if input.WordsInRound < participant.WordsInRound {
		return fmt.Errorf("%w: word count cannot decrease", ErrBusinessRule)
	}
	if input.WordsInRound == participant.WordsInRound {
		return nil
	}

	affected, err := s.warRepo.UpdateParticipantWords(ctx, input.WarID, input.UserID, participant.WordsInRound, input.WordsInRound, now)
	if err != nil {
		return fmt.Errorf("update participant words: %w", err)
	}
	if affected == 1 {
		s.logger.DebugContext(ctx, "checkpoint recorded",
			"war_id", input.WarID,
			"user_id", input.UserID,
			"words_in_round", input.WordsInRound,
		)
		return nil
	}

	// The guard value moved under us. Highest value wins per participant, so
	// a concurrent submission at or above the requested count satisfies the
	// caller's intent.
	current, exists, err := s.warRepo.GetParticipant(ctx, input.WarID, input.UserID)
	if err != nil {
		return fmt.Errorf("reconcile participant after checkpoint: %w", err)
	}
	if exists && current.WordsInRound >= input.WordsInRound {
		return nil
	}

	currentWar, exists, err := s.warRepo.GetByID(ctx, input.WarID)
	if err != nil {
		return fmt.Errorf("reconcile word war after checkpoint: %w", err)
	}
	if !exists || currentWar.Status != wordwar.StatusRunning {
		return fmt.Errorf("%w: checkpoints are only possible while the war is running", ErrBusinessRule)
	}

	return fmt.Errorf("%w: state conflict while recording checkpoint", ErrBusinessRule)
}

// Finish closes a running war and persists the final standings snapshot.
func (s *WordWarService) Finish(ctx context.Context, warID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WordWarService.Finish")
	defer span.End()

	warID = strings.TrimSpace(warID)
	if warID == "" {
		return fmt.Errorf("%w: war id is required", ErrInvalidInput)
	}

	war, exists, err := s.warRepo.GetByID(ctx, warID)
	if err != nil {
		return fmt.Errorf("get word war by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: word war=%s", ErrNotFound, warID)
	}
	if war.Status != wordwar.StatusRunning {
		return fmt.Errorf("%w: finishing is only possible while the war is running", ErrBusinessRule)
	}

	return s.finishWar(ctx, warID, s.now().UTC())
}

// finishWar is the shared finishing path for Finish and the checkpoint
// expiry guard: one conditional transition, reconciliation on zero effect,
// then the ranking snapshot. Losing the transition race to a concurrent
// finisher is a success; the snapshot itself is idempotent.
func (s *WordWarService) finishWar(ctx context.Context, warID string, finishedAt time.Time) error {
	affected, err := s.warRepo.MarkFinished(ctx, warID, finishedAt)
	if err != nil {
		return fmt.Errorf("mark word war finished: %w", err)
	}
	if affected == 0 {
		current, exists, err := s.warRepo.GetByID(ctx, warID)
		if err != nil {
			return fmt.Errorf("reconcile word war after finish: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: word war=%s", ErrNotFound, warID)
		}
		if current.Status != wordwar.StatusFinished {
			return fmt.Errorf("%w: finishing is only possible while the war is running", ErrBusinessRule)
		}
	} else {
		s.logger.InfoContext(ctx, "word war finished", "war_id", warID)
	}

	return s.finalizeRanking(ctx, warID)
}

func isDuplicateConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "duplicate key value violates unique constraint")
}
