package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/quilldesk/wordwar/internal/domain/wordwar"
)

// finalizeRanking captures the standings snapshot for a finished war.
// Inputs are stable once the war is finished, so re-invocation writes an
// identical snapshot and retries after partial failures are safe.
func (s *WordWarService) finalizeRanking(ctx context.Context, warID string) error {
	participants, err := s.warRepo.ListParticipants(ctx, warID)
	if err != nil {
		return fmt.Errorf("list participants for ranking: %w", err)
	}

	sortByStanding(participants)

	ranks := make([]wordwar.FinalRank, 0, len(participants))
	for i, p := range participants {
		ranks = append(ranks, wordwar.FinalRank{
			WordWarID:     warID,
			ParticipantID: p.ID,
			UserID:        p.UserID,
			ProjectID:     p.ProjectID,
			WordsInRound:  p.WordsInRound,
			Rank:          i + 1,
		})
	}

	if err := s.warRepo.SaveFinalRanks(ctx, warID, ranks); err != nil {
		return fmt.Errorf("save final ranks: %w", err)
	}

	s.logger.InfoContext(ctx, "final ranking persisted",
		"war_id", warID,
		"participant_count", len(ranks),
	)

	return nil
}

// Scoreboard returns the live standings of a waiting or running war, or
// the persisted final ranks once the war is finished.
func (s *WordWarService) Scoreboard(ctx context.Context, warID string) (wordwar.Scoreboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WordWarService.Scoreboard")
	defer span.End()

	warID = strings.TrimSpace(warID)
	if warID == "" {
		return wordwar.Scoreboard{}, fmt.Errorf("%w: war id is required", ErrInvalidInput)
	}

	war, exists, err := s.warRepo.GetByID(ctx, warID)
	if err != nil {
		return wordwar.Scoreboard{}, fmt.Errorf("get word war by id: %w", err)
	}
	if !exists {
		return wordwar.Scoreboard{}, fmt.Errorf("%w: word war=%s", ErrNotFound, warID)
	}

	if war.Status == wordwar.StatusFinished {
		ranks, err := s.warRepo.ListFinalRanks(ctx, warID)
		if err != nil {
			return wordwar.Scoreboard{}, fmt.Errorf("list final ranks: %w", err)
		}

		entries := make([]wordwar.ScoreboardEntry, 0, len(ranks))
		for _, r := range ranks {
			entries = append(entries, wordwar.ScoreboardEntry{
				ParticipantID: r.ParticipantID,
				UserID:        r.UserID,
				ProjectID:     r.ProjectID,
				WordsInRound:  r.WordsInRound,
				Rank:          r.Rank,
			})
		}

		return wordwar.Scoreboard{War: war, Final: true, Entries: entries}, nil
	}

	participants, err := s.warRepo.ListParticipants(ctx, warID)
	if err != nil {
		return wordwar.Scoreboard{}, fmt.Errorf("list participants: %w", err)
	}

	sortByStanding(participants)

	entries := make([]wordwar.ScoreboardEntry, 0, len(participants))
	for i, p := range participants {
		entries = append(entries, wordwar.ScoreboardEntry{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			ProjectID:     p.ProjectID,
			WordsInRound:  p.WordsInRound,
			Rank:          i + 1,
		})
	}

	return wordwar.Scoreboard{War: war, Final: false, Entries: entries}, nil
}

// sortByStanding orders participants by word count descending; ties break
// by join time, then participant id, so the order is deterministic across
// re-reads.
func sortByStanding(participants []wordwar.Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].WordsInRound != participants[j].WordsInRound {
			return participants[i].WordsInRound > participants[j].WordsInRound
		}
		if !participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].JoinedAt.Before(participants[j].JoinedAt)
		}
		return participants[i].ID < participants[j].ID
	})
}
