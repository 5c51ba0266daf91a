package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/postgres"
)

type billingCycleRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBillingCycleRepository(db *postgres.DB, logger *logger.Logger) billingcycle.Repository {
	return &billingCycleRepository{db: db, logger: logger}
}

func (r *billingCycleRepository) Get(ctx context.Context, id string) (*billingcycle.BillingCycle, error) {
	query := `SELECT id, duration, duration_unit, created_at FROM billing_cycles WHERE id = $1`

	var cycle billingcycle.BillingCycle
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &cycle, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, billingcycle.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing cycle").
			WithReportableDetails(map[string]any{"billing_cycle_id": id}).
			Mark(ierr.ErrDatabase)
	}
	return &cycle, nil
}
