package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/quilldesk/wordwar/internal/domain/project"
	qb "github.com/quilldesk/wordwar/internal/platform/querybuilder"
)

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(ctx context.Context, projectID string) (project.Project, bool, error) {
	query, args, err := qb.Select("*").
		From("projects").
		Where(qb.Eq("public_id", projectID)).
		ToSQL()
	if err != nil {
		return project.Project{}, false, fmt.Errorf("build get project query: %w", err)
	}

	var row projectTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return project.Project{}, false, nil
		}
		return project.Project{}, false, fmt.Errorf("get project: %w", err)
	}

	return project.Project{
		ID:          row.PublicID,
		OwnerUserID: row.OwnerUserID,
		Title:       row.Title,
	}, true, nil
}
