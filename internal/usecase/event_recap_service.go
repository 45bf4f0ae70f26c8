package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/quilldesk/wordwar/internal/domain/event"
	"github.com/quilldesk/wordwar/internal/domain/wordwar"
)

const defaultRecapWorkers = 4

// EventRecap bundles the scoreboards of every finished war of one event.
type EventRecap struct {
	Event event.Event
	Wars  []wordwar.Scoreboard
}

type scoreboardProvider interface {
	Scoreboard(ctx context.Context, warID string) (wordwar.Scoreboard, error)
}

// EventRecapService builds read-only recaps of past word wars. Scoreboard
// loads fan out over a bounded worker pool since events can accumulate
// many finished wars.
type EventRecapService struct {
	eventRepo   event.Repository
	warRepo     wordwar.Repository
	scoreboards scoreboardProvider
	maxWorkers  int
}

func NewEventRecapService(eventRepo event.Repository, warRepo wordwar.Repository, scoreboards scoreboardProvider, maxWorkers int) *EventRecapService {
	if maxWorkers < 1 {
		maxWorkers = defaultRecapWorkers
	}

	return &EventRecapService{
		eventRepo:   eventRepo,
		warRepo:     warRepo,
		scoreboards: scoreboards,
		maxWorkers:  maxWorkers,
	}
}

func (s *EventRecapService) Recap(ctx context.Context, eventID string) (EventRecap, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return EventRecap{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	ev, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return EventRecap{}, fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return EventRecap{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}

	wars, err := s.warRepo.ListFinishedByEvent(ctx, eventID)
	if err != nil {
		return EventRecap{}, fmt.Errorf("list finished word wars: %w", err)
	}
	if len(wars) == 0 {
		return EventRecap{Event: ev, Wars: []wordwar.Scoreboard{}}, nil
	}

	workers := s.maxWorkers
	if workers > len(wars) {
		workers = len(wars)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return EventRecap{}, fmt.Errorf("create recap worker pool: %w", err)
	}
	defer pool.Release()

	boards := make([]wordwar.Scoreboard, len(wars))
	taskErrs := make([]error, len(wars))

	var wg sync.WaitGroup
	for i, war := range wars {
		i, war := i, war
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			board, err := s.scoreboards.Scoreboard(ctx, war.ID)
			if err != nil {
				taskErrs[i] = fmt.Errorf("scoreboard for war=%s: %w", war.ID, err)
				return
			}
			boards[i] = board
		})
		if submitErr != nil {
			wg.Done()
			taskErrs[i] = fmt.Errorf("submit recap task for war=%s: %w", war.ID, submitErr)
		}
	}
	wg.Wait()

	for _, err := range taskErrs {
		if err != nil {
			return EventRecap{}, err
		}
	}

	return EventRecap{Event: ev, Wars: boards}, nil
}
