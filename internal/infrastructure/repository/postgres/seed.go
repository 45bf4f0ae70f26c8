package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/quilldesk/wordwar/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo events and projects into an empty
// database so a fresh install can run word wars without an upstream
// catalog import.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM events`); err != nil {
		return fmt.Errorf("count events for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, ev := range memory.SeedEvents() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO events (public_id, title, is_active, starts_at, ends_at)
VALUES (:public_id, :title, :is_active, :starts_at, :ends_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id": ev.ID,
			"title":     ev.Title,
			"is_active": ev.IsActive,
			"starts_at": ev.StartsAt,
			"ends_at":   ev.EndsAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed event %s query: %w", ev.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed event %s: %w", ev.ID, err)
		}
	}

	for _, p := range memory.SeedProjects() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO projects (public_id, owner_user_id, title)
VALUES (:public_id, :owner_user_id, :title)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":     p.ID,
			"owner_user_id": p.OwnerUserID,
			"title":         p.Title,
		})
		if err != nil {
			return fmt.Errorf("bind seed project %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed project %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
