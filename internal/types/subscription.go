package types

import (
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the lifecycle state of a subscription.
// PENDING -> ACTIVE -> {EXPIRED, CANCELLED}; CANCELLED -> ACTIVE on reactivation.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusPending,
		SubscriptionStatusActive,
		SubscriptionStatusExpired,
		SubscriptionStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DateRangeFilter matches dates between From and To, both inclusive.
// A nil bound is open.
type DateRangeFilter struct {
	From *Date `json:"from,omitempty"`
	To   *Date `json:"to,omitempty"`
}

// Contains reports whether d lies inside the range. A zero date never matches.
func (f *DateRangeFilter) Contains(d Date) bool {
	if f == nil {
		return true
	}
	if d.IsZero() {
		return false
	}
	if f.From != nil && d.Before(*f.From) {
		return false
	}
	if f.To != nil && d.After(*f.To) {
		return false
	}
	return true
}

// SubscriptionFilter selects subscriptions for sweeps and read-only queries.
// Results are ordered by id so callers can page with AfterID.
type SubscriptionFilter struct {
	SubscriptionIDs    []string             `json:"subscription_ids,omitempty"`
	SubscriberID       string               `json:"subscriber_id,omitempty"`
	PlanID             string               `json:"plan_id,omitempty"`
	SubscriptionStatus []SubscriptionStatus `json:"subscription_status,omitempty"`
	AutoRenew          *bool                `json:"auto_renew,omitempty"`
	IsTrial            *bool                `json:"is_trial,omitempty"`
	// HasCancelledAt selects pending (or finalized) cancellations when true
	// and subscriptions without a cancellation mark when false.
	HasCancelledAt *bool            `json:"has_cancelled_at,omitempty"`
	EndDate        *DateRangeFilter `json:"end_date,omitempty"`
	TrialEndDate   *DateRangeFilter `json:"trial_end_date,omitempty"`

	// AfterID and Limit implement keyset pagination. Limit <= 0 means no limit.
	AfterID string `json:"after_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

func (f *SubscriptionFilter) Validate() error {
	if f == nil {
		return nil
	}
	for _, s := range f.SubscriptionStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if f.Limit < 0 {
		return ierr.NewError("limit must not be negative").
			WithHint("Limit must be zero (unbounded) or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsUnlimited reports whether the filter has no page size.
func (f *SubscriptionFilter) IsUnlimited() bool {
	return f == nil || f.Limit <= 0
}

// WithAfterID returns a copy of the filter positioned after the given id.
func (f SubscriptionFilter) WithAfterID(id string) *SubscriptionFilter {
	f.AfterID = id
	return &f
}
