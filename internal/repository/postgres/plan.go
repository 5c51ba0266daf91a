package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flexprice/lifecycle/internal/domain/plan"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/postgres"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	query := `
		SELECT
			id,
			name,
			price,
			billing_cycle_id,
			trial_enabled,
			trial_duration,
			trial_duration_unit,
			created_at
		FROM plans
		WHERE id = $1
	`

	var p plan.Plan
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, plan.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			WithReportableDetails(map[string]any{"plan_id": id}).
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}
