package project

import "context"

// Repository describes project lookups needed by use cases.
type Repository interface {
	GetByID(ctx context.Context, projectID string) (Project, bool, error)
}
