package plan

import "context"

// Repository is the read-only view of the plan catalog.
type Repository interface {
	Get(ctx context.Context, id string) (*Plan, error)
}
