package subscription

import (
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// SubscriberID is the identifier of the paying party
	SubscriberID string `db:"subscriber_id" json:"subscriber_id"`

	// PlanID is the plan the subscription is billed on
	PlanID string `db:"plan_id" json:"plan_id"`

	// PreviousPlanID is the plan before the last plan change
	PreviousPlanID *string `db:"previous_plan_id" json:"previous_plan_id,omitempty"`

	// InvoiceID references the invoice that paid for the subscription, if any
	InvoiceID *string `db:"invoice_id" json:"invoice_id,omitempty"`

	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	// StartDate and EndDate bound the current billing period, both inclusive
	StartDate types.Date `db:"start_date" json:"start_date"`
	EndDate   types.Date `db:"end_date" json:"end_date"`

	IsTrial bool `db:"is_trial" json:"is_trial"`

	// TrialEndDate equals EndDate while a trial runs. It is kept after the
	// trial expires and cleared by renewal or conversion.
	TrialEndDate *types.Date `db:"trial_end_date" json:"trial_end_date,omitempty"`

	AutoRenew bool `db:"auto_renew" json:"auto_renew"`

	// RenewalCount only grows, and only through renewal
	RenewalCount int `db:"renewal_count" json:"renewal_count"`

	// CancelledAt on an ACTIVE subscription marks a pending cancellation
	CancelledAt        *types.Date `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string     `db:"cancellation_reason" json:"cancellation_reason,omitempty"`

	PlanChangedAt   *types.Date      `db:"plan_changed_at" json:"plan_changed_at,omitempty"`
	ProrationCredit *decimal.Decimal `db:"proration_credit" json:"proration_credit,omitempty"`

	Metadata types.Metadata `db:"metadata" json:"metadata,omitempty"`

	// Version is incremented on every successful update. Updates are
	// conditional on the version the writer read.
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsPendingCancellation reports whether the subscription is still serving but
// will end as CANCELLED instead of EXPIRED.
func (s *Subscription) IsPendingCancellation() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive && s.CancelledAt != nil
}

// Validate checks the invariants every persisted subscription must hold.
func (s *Subscription) Validate() error {
	if s.SubscriberID == "" {
		return s.invalid("subscriber_id is required")
	}
	if s.PlanID == "" {
		return s.invalid("plan_id is required")
	}
	if err := s.SubscriptionStatus.Validate(); err != nil {
		return err
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return s.invalid("start_date and end_date are required")
	}
	if s.EndDate.Before(s.StartDate) {
		return s.invalid("end_date must not be before start_date")
	}
	if s.IsTrial && (s.TrialEndDate == nil || !s.TrialEndDate.Equal(s.EndDate)) {
		return s.invalid("a running trial must end on end_date")
	}
	if s.SubscriptionStatus == types.SubscriptionStatusCancelled && s.AutoRenew {
		return s.invalid("a cancelled subscription cannot auto renew")
	}
	if s.RenewalCount < 0 {
		return s.invalid("renewal_count must not be negative")
	}
	if s.ProrationCredit != nil && s.ProrationCredit.IsNegative() {
		return s.invalid("proration_credit must not be negative")
	}
	return nil
}

func (s *Subscription) invalid(msg string) error {
	return ierr.NewError(msg).
		WithHint("Invalid subscription").
		WithReportableDetails(map[string]any{
			"subscription_id": s.ID,
			"reason":          msg,
		}).
		Mark(ierr.ErrValidation)
}

// Clone returns a deep copy. Stores hand out clones so callers never share
// mutable state with the persisted record.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.PreviousPlanID = clonePtr(s.PreviousPlanID)
	c.InvoiceID = clonePtr(s.InvoiceID)
	c.TrialEndDate = clonePtr(s.TrialEndDate)
	c.CancelledAt = clonePtr(s.CancelledAt)
	c.CancellationReason = clonePtr(s.CancellationReason)
	c.PlanChangedAt = clonePtr(s.PlanChangedAt)
	c.ProrationCredit = clonePtr(s.ProrationCredit)
	c.Metadata = s.Metadata.Clone()
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return lo.ToPtr(*p)
}
