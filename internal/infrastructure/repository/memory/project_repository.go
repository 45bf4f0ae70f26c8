package memory

import (
	"context"
	"sync"

	"github.com/quilldesk/wordwar/internal/domain/project"
)

type ProjectRepository struct {
	mu    sync.RWMutex
	items map[string]project.Project
}

func NewProjectRepository(projects []project.Project) *ProjectRepository {
	items := make(map[string]project.Project, len(projects))
	for _, p := range projects {
		items[p.ID] = p
	}

	return &ProjectRepository{items: items}
}

func (r *ProjectRepository) GetByID(_ context.Context, projectID string) (project.Project, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[projectID]
	if !ok {
		return project.Project{}, false, nil
	}
	return p, true, nil
}
