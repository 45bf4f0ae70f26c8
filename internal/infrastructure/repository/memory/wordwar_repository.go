package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quilldesk/wordwar/internal/domain/wordwar"
)

// WordWarRepository keeps wars in process memory. Every conditional write
// checks its predicate and mutates under one mutex hold, which mirrors the
// atomicity the SQL store gets from row-level locking.
type WordWarRepository struct {
	mu           sync.Mutex
	wars         map[string]wordwar.WordWar
	participants map[string]wordwar.Participant
	ranks        map[string][]wordwar.FinalRank
}

func NewWordWarRepository() *WordWarRepository {
	return &WordWarRepository{
		wars:         make(map[string]wordwar.WordWar),
		participants: make(map[string]wordwar.Participant),
		ranks:        make(map[string][]wordwar.FinalRank),
	}
}

func (r *WordWarRepository) Create(_ context.Context, war wordwar.WordWar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wars[war.ID] = war
	return nil
}

func (r *WordWarRepository) GetByID(_ context.Context, warID string) (wordwar.WordWar, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	war, ok := r.wars[warID]
	if !ok {
		return wordwar.WordWar{}, false, nil
	}
	return war, true, nil
}

func (r *WordWarRepository) FindOpenByEvent(_ context.Context, eventID string) (wordwar.WordWar, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, war := range r.wars {
		if war.EventID == eventID && war.Status != wordwar.StatusFinished {
			return war, true, nil
		}
	}
	return wordwar.WordWar{}, false, nil
}

func (r *WordWarRepository) ListFinishedByEvent(_ context.Context, eventID string) ([]wordwar.WordWar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]wordwar.WordWar, 0)
	for _, war := range r.wars {
		if war.EventID == eventID && war.Status == wordwar.StatusFinished {
			out = append(out, war)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *WordWarRepository) MarkRunning(_ context.Context, warID string, startsAt, endsAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	war, ok := r.wars[warID]
	if !ok || war.Status != wordwar.StatusWaiting {
		return 0, nil
	}

	war.Status = wordwar.StatusRunning
	war.StartsAt = &startsAt
	war.EndsAt = &endsAt
	war.UpdatedAt = startsAt
	r.wars[warID] = war
	return 1, nil
}

func (r *WordWarRepository) MarkFinished(_ context.Context, warID string, finishedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	war, ok := r.wars[warID]
	if !ok || war.Status != wordwar.StatusRunning {
		return 0, nil
	}

	war.Status = wordwar.StatusFinished
	war.FinishedAt = &finishedAt
	war.UpdatedAt = finishedAt
	r.wars[warID] = war
	return 1, nil
}

func (r *WordWarRepository) AddParticipant(_ context.Context, participant wordwar.Participant) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	war, ok := r.wars[participant.WordWarID]
	if !ok || war.Status != wordwar.StatusWaiting {
		return 0, nil
	}
	key := participantKey(participant.WordWarID, participant.UserID)
	if _, exists := r.participants[key]; exists {
		return 0, nil
	}

	r.participants[key] = participant
	return 1, nil
}

func (r *WordWarRepository) RemoveParticipant(_ context.Context, warID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	war, ok := r.wars[warID]
	if !ok || war.Status != wordwar.StatusWaiting {
		return 0, nil
	}
	key := participantKey(warID, userID)
	if _, exists := r.participants[key]; !exists {
		return 0, nil
	}

	delete(r.participants, key)
	return 1, nil
}

func (r *WordWarRepository) GetParticipant(_ context.Context, warID, userID string) (wordwar.Participant, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[participantKey(warID, userID)]
	if !ok {
		return wordwar.Participant{}, false, nil
	}
	return participant, true, nil
}

func (r *WordWarRepository) ListParticipants(_ context.Context, warID string) ([]wordwar.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]wordwar.Participant, 0)
	for _, participant := range r.participants {
		if participant.WordWarID == warID {
			out = append(out, participant)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *WordWarRepository) UpdateParticipantWords(_ context.Context, warID, userID string, fromWords, toWords int, updatedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	war, ok := r.wars[warID]
	if !ok || war.Status != wordwar.StatusRunning {
		return 0, nil
	}
	key := participantKey(warID, userID)
	participant, ok := r.participants[key]
	if !ok || participant.WordsInRound != fromWords {
		return 0, nil
	}

	participant.WordsInRound = toWords
	participant.UpdatedAt = updatedAt
	r.participants[key] = participant
	return 1, nil
}

func (r *WordWarRepository) SaveFinalRanks(_ context.Context, warID string, ranks []wordwar.FinalRank) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ranks[warID] = append([]wordwar.FinalRank(nil), ranks...)
	return nil
}

func (r *WordWarRepository) ListFinalRanks(_ context.Context, warID string) ([]wordwar.FinalRank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ranks := r.ranks[warID]
	out := append([]wordwar.FinalRank(nil), ranks...)
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func participantKey(warID, userID string) string {
	return warID + "::" + userID
}
