package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/postgres"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/lib/pq"
)

// pqUniqueViolation is the postgres SQLSTATE for a unique constraint violation
const pqUniqueViolation = "23505"

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			subscriber_id,
			plan_id,
			previous_plan_id,
			invoice_id,
			subscription_status,
			start_date,
			end_date,
			is_trial,
			trial_end_date,
			auto_renew,
			renewal_count,
			cancelled_at,
			cancellation_reason,
			plan_changed_at,
			proration_credit,
			metadata,
			version,
			created_at,
			updated_at
		) VALUES (
			:id,
			:subscriber_id,
			:plan_id,
			:previous_plan_id,
			:invoice_id,
			:subscription_status,
			:start_date,
			:end_date,
			:is_trial,
			:trial_end_date,
			:auto_renew,
			:renewal_count,
			:cancelled_at,
			:cancellation_reason,
			:plan_changed_at,
			:proration_credit,
			:metadata,
			:version,
			:created_at,
			:updated_at
		)
	`

	if sub.Version == 0 {
		sub.Version = 1
	}

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub); err != nil {
		if isUniqueViolation(err) {
			return subscription.NewAlreadyExistsError(sub.ID)
		}
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	var sub subscription.Subscription
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, subscription.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args, err := buildSubscriptionQuery(filter)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build subscription query").
			Mark(ierr.ErrSystem)
	}

	subs := make([]*subscription.Subscription, 0)
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

// Update writes every mutable column if the stored version still matches the
// version the caller read.
func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET
			plan_id = :plan_id,
			previous_plan_id = :previous_plan_id,
			invoice_id = :invoice_id,
			subscription_status = :subscription_status,
			start_date = :start_date,
			end_date = :end_date,
			is_trial = :is_trial,
			trial_end_date = :trial_end_date,
			auto_renew = :auto_renew,
			renewal_count = :renewal_count,
			cancelled_at = :cancelled_at,
			cancellation_reason = :cancellation_reason,
			plan_changed_at = :plan_changed_at,
			proration_credit = :proration_credit,
			metadata = :metadata,
			updated_at = :updated_at,
			version = version + 1
		WHERE
			id = :id AND
			version = :version
	`

	q := r.db.GetQuerier(ctx)
	result, err := q.NamedExecContext(ctx, query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		// tell a missing row apart from a stale version
		var exists bool
		if err := q.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1)`, sub.ID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to update subscription").
				Mark(ierr.ErrDatabase)
		}
		if !exists {
			return subscription.NewNotFoundError(sub.ID)
		}
		r.logger.Debugw("subscription version conflict",
			"subscription_id", sub.ID,
			"expected_version", sub.Version)
		return subscription.NewVersionConflictError(sub.ID, sub.Version)
	}

	sub.Version++
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
