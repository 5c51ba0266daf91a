package subscription

import (
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
)

// NewNotFoundError creates a new not found error with additional context
func NewNotFoundError(id string) error {
	return ierr.NewError("subscription not found").
		WithHintf("Subscription with ID %s was not found", id).
		WithReportableDetails(map[string]any{
			"subscription_id": id,
		}).
		Mark(ierr.ErrNotFound)
}

// NewAlreadyExistsError creates a new already exists error with additional context
func NewAlreadyExistsError(id string) error {
	return ierr.NewError("subscription already exists").
		WithHintf("Subscription with ID %s already exists", id).
		WithReportableDetails(map[string]any{
			"subscription_id": id,
		}).
		Mark(ierr.ErrAlreadyExists)
}

// NewVersionConflictError reports a write against a stale read
func NewVersionConflictError(id string, expectedVersion int) error {
	return ierr.NewError("subscription version conflict").
		WithHint("Subscription was modified concurrently, please retry").
		WithReportableDetails(map[string]any{
			"subscription_id":  id,
			"expected_version": expectedVersion,
		}).
		Mark(ierr.ErrVersionConflict)
}

// NewInvalidStateError reports an operation not allowed from the current status
func NewInvalidStateError(id string, op Operation, current types.SubscriptionStatus) error {
	return ierr.NewError("subscription is in invalid state for operation").
		WithHintf("Cannot %s a subscription in status %s", op.Verb(), current).
		WithReportableDetails(map[string]any{
			"subscription_id": id,
			"operation":       op,
			"current_status":  current,
			"allowed_status":  AllowedStatuses(op),
		}).
		Mark(ierr.ErrInvalidState)
}

// NewNotInTrialError reports a trial operation on a subscription without a running trial
func NewNotInTrialError(id string, op Operation) error {
	return ierr.NewError("subscription is not in trial").
		WithHintf("Cannot %s a subscription that is not in trial", op.Verb()).
		WithReportableDetails(map[string]any{
			"subscription_id": id,
			"operation":       op,
		}).
		Mark(ierr.ErrInvalidState)
}

// NewNoPendingCancellationError reports a finalization without a cancellation mark
func NewNoPendingCancellationError(id string) error {
	return ierr.NewError("subscription has no pending cancellation").
		WithHint("Subscription was not scheduled for cancellation").
		WithReportableDetails(map[string]any{
			"subscription_id": id,
		}).
		Mark(ierr.ErrInvalidState)
}

// NewSamePlanError rejects a plan change to the plan already in use
func NewSamePlanError(id, planID string) error {
	return ierr.NewError("subscription is already on this plan").
		WithHintf("Subscription is already on plan %s", planID).
		WithReportableDetails(map[string]any{
			"subscription_id": id,
			"plan_id":         planID,
		}).
		Mark(ierr.ErrValidation)
}
