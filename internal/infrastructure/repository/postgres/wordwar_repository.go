package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/quilldesk/wordwar/internal/domain/wordwar"
	qb "github.com/quilldesk/wordwar/internal/platform/querybuilder"
)

// WordWarRepository persists word wars with single conditional statements.
// Every state transition is an UPDATE guarded by the expected current
// status, so the affected-row count tells the caller whether its write
// took effect.
type WordWarRepository struct {
	db *sqlx.DB
}

func NewWordWarRepository(db *sqlx.DB) *WordWarRepository {
	return &WordWarRepository{db: db}
}

func (r *WordWarRepository) Create(ctx context.Context, war wordwar.WordWar) error {
	model := wordWarInsertModel{
		PublicID:          war.ID,
		EventID:           war.EventID,
		RequestedByUserID: war.RequestedByUserID,
		DurationMinutes:   war.DurationMinutes,
		Status:            string(war.Status),
		CreatedAt:         war.CreatedAt,
		UpdatedAt:         war.UpdatedAt,
	}

	query, args, err := qb.InsertModel("word_wars", model, "")
	if err != nil {
		return fmt.Errorf("build insert word war query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert word war: %w", err)
	}

	return nil
}

func (r *WordWarRepository) GetByID(ctx context.Context, warID string) (wordwar.WordWar, bool, error) {
	query, args, err := wordWarBaseSelectBuilder().
		Where(qb.Eq("public_id", warID)).
		ToSQL()
	if err != nil {
		return wordwar.WordWar{}, false, fmt.Errorf("build get word war query: %w", err)
	}

	var row wordWarTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wordwar.WordWar{}, false, nil
		}
		return wordwar.WordWar{}, false, fmt.Errorf("get word war: %w", err)
	}

	return wordWarFromRow(row), true, nil
}

func (r *WordWarRepository) FindOpenByEvent(ctx context.Context, eventID string) (wordwar.WordWar, bool, error) {
	query, args, err := wordWarBaseSelectBuilder().
		Where(
			qb.Eq("event_public_id", eventID),
			qb.Expr("status <> ?", string(wordwar.StatusFinished)),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return wordwar.WordWar{}, false, fmt.Errorf("build find open word war query: %w", err)
	}

	var row wordWarTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wordwar.WordWar{}, false, nil
		}
		return wordwar.WordWar{}, false, fmt.Errorf("find open word war: %w", err)
	}

	return wordWarFromRow(row), true, nil
}

func (r *WordWarRepository) ListFinishedByEvent(ctx context.Context, eventID string) ([]wordwar.WordWar, error) {
	query, args, err := wordWarBaseSelectBuilder().
		Where(
			qb.Eq("event_public_id", eventID),
			qb.Eq("status", string(wordwar.StatusFinished)),
		).
		OrderBy("created_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list finished word wars query: %w", err)
	}

	var rows []wordWarTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list finished word wars: %w", err)
	}

	out := make([]wordwar.WordWar, 0, len(rows))
	for _, row := range rows {
		out = append(out, wordWarFromRow(row))
	}
	return out, nil
}

func (r *WordWarRepository) MarkRunning(ctx context.Context, warID string, startsAt, endsAt time.Time) (int64, error) {
	query, args, err := qb.Update("word_wars").
		Set("status", string(wordwar.StatusRunning)).
		Set("starts_at", startsAt).
		Set("ends_at", endsAt).
		Set("updated_at", startsAt).
		Where(
			qb.Eq("public_id", warID),
			qb.Eq("status", string(wordwar.StatusWaiting)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build mark running query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark word war running: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark word war running rows affected: %w", err)
	}
	return affected, nil
}

func (r *WordWarRepository) MarkFinished(ctx context.Context, warID string, finishedAt time.Time) (int64, error) {
	query, args, err := qb.Update("word_wars").
		Set("status", string(wordwar.StatusFinished)).
		Set("finished_at", finishedAt).
		Set("updated_at", finishedAt).
		Where(
			qb.Eq("public_id", warID),
			qb.Eq("status", string(wordwar.StatusRunning)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build mark finished query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark word war finished: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark word war finished rows affected: %w", err)
	}
	return affected, nil
}

// AddParticipant inserts only while the war is still waiting, and swallows
// the duplicate row instead of failing, so a retried join reports zero
// affected rows rather than an error.
func (r *WordWarRepository) AddParticipant(ctx context.Context, participant wordwar.Participant) (int64, error) {
	const query = `
INSERT INTO word_war_participants (public_id, war_public_id, user_id, project_public_id, words_in_round, joined_at, updated_at)
SELECT $1, $2, $3, $4, $5, $6, $7
WHERE EXISTS (
    SELECT 1 FROM word_wars WHERE public_id = $2 AND status = $8
)
ON CONFLICT (war_public_id, user_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		participant.ID,
		participant.WordWarID,
		participant.UserID,
		participant.ProjectID,
		participant.WordsInRound,
		participant.JoinedAt,
		participant.UpdatedAt,
		string(wordwar.StatusWaiting),
	)
	if err != nil {
		return 0, fmt.Errorf("add participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("add participant rows affected: %w", err)
	}
	return affected, nil
}

func (r *WordWarRepository) RemoveParticipant(ctx context.Context, warID, userID string) (int64, error) {
	query, args, err := qb.DeleteFrom("word_war_participants").
		Where(
			qb.Eq("war_public_id", warID),
			qb.Eq("user_id", userID),
			qb.Expr("EXISTS (SELECT 1 FROM word_wars WHERE public_id = ? AND status = ?)",
				warID, string(wordwar.StatusWaiting)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build remove participant query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("remove participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove participant rows affected: %w", err)
	}
	return affected, nil
}

func (r *WordWarRepository) GetParticipant(ctx context.Context, warID, userID string) (wordwar.Participant, bool, error) {
	query, args, err := participantBaseSelectBuilder().
		Where(
			qb.Eq("war_public_id", warID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return wordwar.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wordwar.Participant{}, false, nil
		}
		return wordwar.Participant{}, false, fmt.Errorf("get participant: %w", err)
	}

	return participantFromRow(row), true, nil
}

func (r *WordWarRepository) ListParticipants(ctx context.Context, warID string) ([]wordwar.Participant, error) {
	query, args, err := participantBaseSelectBuilder().
		Where(qb.Eq("war_public_id", warID)).
		OrderBy("joined_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	out := make([]wordwar.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

// UpdateParticipantWords is guarded by the value the caller last read and
// by the war still running, so a stale or late report affects zero rows.
func (r *WordWarRepository) UpdateParticipantWords(ctx context.Context, warID, userID string, fromWords, toWords int, updatedAt time.Time) (int64, error) {
	query, args, err := qb.Update("word_war_participants").
		Set("words_in_round", toWords).
		Set("updated_at", updatedAt).
		Where(
			qb.Eq("war_public_id", warID),
			qb.Eq("user_id", userID),
			qb.Eq("words_in_round", fromWords),
			qb.Expr("EXISTS (SELECT 1 FROM word_wars WHERE public_id = ? AND status = ?)",
				warID, string(wordwar.StatusRunning)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build update participant words query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update participant words: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update participant words rows affected: %w", err)
	}
	return affected, nil
}

// SaveFinalRanks writes the standings snapshot once; duplicate rows from
// concurrent finishers collapse via ON CONFLICT DO NOTHING.
func (r *WordWarRepository) SaveFinalRanks(ctx context.Context, warID string, ranks []wordwar.FinalRank) error {
	if len(ranks) == 0 {
		return nil
	}

	builder := qb.InsertInto("word_war_final_ranks").
		Columns("war_public_id", "participant_public_id", "user_id", "project_public_id", "words_in_round", "rank", "created_at")
	createdAt := time.Now().UTC()
	for _, rank := range ranks {
		builder.Values(
			warID,
			rank.ParticipantID,
			rank.UserID,
			rank.ProjectID,
			rank.WordsInRound,
			rank.Rank,
			createdAt,
		)
	}
	query, args, err := builder.
		Suffix("ON CONFLICT (war_public_id, user_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save final ranks query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save final ranks: %w", err)
	}

	return nil
}

func (r *WordWarRepository) ListFinalRanks(ctx context.Context, warID string) ([]wordwar.FinalRank, error) {
	query, args, err := qb.Select("*").
		From("word_war_final_ranks").
		Where(qb.Eq("war_public_id", warID)).
		OrderBy("rank").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list final ranks query: %w", err)
	}

	var rows []finalRankTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list final ranks: %w", err)
	}

	out := make([]wordwar.FinalRank, 0, len(rows))
	for _, row := range rows {
		out = append(out, wordwar.FinalRank{
			WordWarID:     row.WarID,
			ParticipantID: row.ParticipantID,
			UserID:        row.UserID,
			ProjectID:     row.ProjectID,
			WordsInRound:  row.WordsInRound,
			Rank:          row.Rank,
		})
	}
	return out, nil
}

func wordWarFromRow(row wordWarTableModel) wordwar.WordWar {
	return wordwar.WordWar{
		ID:                row.PublicID,
		EventID:           row.EventID,
		RequestedByUserID: row.RequestedByUserID,
		DurationMinutes:   row.DurationMinutes,
		Status:            wordwar.Status(row.Status),
		StartsAt:          row.StartsAt,
		EndsAt:            row.EndsAt,
		FinishedAt:        row.FinishedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func participantFromRow(row participantTableModel) wordwar.Participant {
	return wordwar.Participant{
		ID:           row.PublicID,
		WordWarID:    row.WarID,
		UserID:       row.UserID,
		ProjectID:    row.ProjectID,
		WordsInRound: row.WordsInRound,
		JoinedAt:     row.JoinedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func wordWarBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("word_wars")
}

func participantBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("word_war_participants")
}
