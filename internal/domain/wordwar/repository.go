package wordwar

import (
	"context"
	"time"
)

// Repository describes word war persistence needs from use cases.
//
// The mutating methods are conditional writes: the predicate encoding the
// expected prior state lives inside the store operation, and the returned
// count says how many rows the write touched. A zero count means the
// predicate did not hold at commit time; callers reconcile by re-reading.
type Repository interface {
	Create(ctx context.Context, war WordWar) error
	GetByID(ctx context.Context, warID string) (WordWar, bool, error)
	// FindOpenByEvent returns the event's war whose status is not finished,
	// if one exists.
	FindOpenByEvent(ctx context.Context, eventID string) (WordWar, bool, error)
	ListFinishedByEvent(ctx context.Context, eventID string) ([]WordWar, error)

	// MarkRunning transitions waiting -> running and stamps the round window.
	MarkRunning(ctx context.Context, warID string, startsAt, endsAt time.Time) (int64, error)
	// MarkFinished transitions running -> finished.
	MarkFinished(ctx context.Context, warID string, finishedAt time.Time) (int64, error)

	// AddParticipant inserts the row only while the war is waiting and no row
	// exists for the same (war, user) pair.
	AddParticipant(ctx context.Context, participant Participant) (int64, error)
	// RemoveParticipant deletes the row only while the war is waiting.
	RemoveParticipant(ctx context.Context, warID, userID string) (int64, error)
	GetParticipant(ctx context.Context, warID, userID string) (Participant, bool, error)
	ListParticipants(ctx context.Context, warID string) ([]Participant, error)
	// UpdateParticipantWords raises WordsInRound from the previously-read
	// value, guarded by that value and by the war still being running.
	UpdateParticipantWords(ctx context.Context, warID, userID string, fromWords, toWords int, updatedAt time.Time) (int64, error)

	// SaveFinalRanks replaces the war's standings snapshot. Re-invocation
	// with the same ranks yields an identical snapshot.
	SaveFinalRanks(ctx context.Context, warID string, ranks []FinalRank) error
	ListFinalRanks(ctx context.Context, warID string) ([]FinalRank, error)
}
