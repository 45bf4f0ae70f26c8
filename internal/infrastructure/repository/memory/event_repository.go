package memory

import (
	"context"
	"sync"

	"github.com/quilldesk/wordwar/internal/domain/event"
)

type EventRepository struct {
	mu    sync.RWMutex
	items map[string]event.Event
}

func NewEventRepository(events []event.Event) *EventRepository {
	items := make(map[string]event.Event, len(events))
	for _, e := range events {
		items[e.ID] = e
	}

	return &EventRepository{items: items}
}

func (r *EventRepository) GetByID(_ context.Context, eventID string) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[eventID]
	if !ok {
		return event.Event{}, false, nil
	}
	return e, true, nil
}
