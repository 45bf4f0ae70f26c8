package event

import "context"

// Repository describes event lookups needed by use cases.
type Repository interface {
	GetByID(ctx context.Context, eventID string) (Event, bool, error)
}
