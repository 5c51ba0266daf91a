package dto

import (
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/flexprice/lifecycle/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type CreateSubscriptionRequest struct {
	SubscriberID string `json:"subscriber_id" validate:"required"`
	PlanID       string `json:"plan_id" validate:"required"`
	// StartTrial starts the plan's trial when the plan offers one
	StartTrial bool `json:"start_trial"`
	// AutoRenew defaults to true when omitted
	AutoRenew *bool          `json:"auto_renew,omitempty"`
	InvoiceID *string        `json:"invoice_id,omitempty"`
	Metadata  types.Metadata `json:"metadata,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// GetAutoRenew resolves the auto renew flag with its default.
func (r *CreateSubscriptionRequest) GetAutoRenew() bool {
	return lo.FromPtrOr(r.AutoRenew, true)
}

// ImportLegacySubscriptionRequest carries a complete subscription record from
// an existing system. It is persisted as given once its invariants hold.
type ImportLegacySubscriptionRequest struct {
	ID                 string                   `json:"id,omitempty"`
	SubscriberID       string                   `json:"subscriber_id" validate:"required"`
	PlanID             string                   `json:"plan_id" validate:"required"`
	PreviousPlanID     *string                  `json:"previous_plan_id,omitempty"`
	InvoiceID          *string                  `json:"invoice_id,omitempty"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status" validate:"required"`
	StartDate          types.Date               `json:"start_date"`
	EndDate            types.Date               `json:"end_date"`
	IsTrial            bool                     `json:"is_trial"`
	TrialEndDate       *types.Date              `json:"trial_end_date,omitempty"`
	AutoRenew          bool                     `json:"auto_renew"`
	RenewalCount       int                      `json:"renewal_count" validate:"min=0"`
	CancelledAt        *types.Date              `json:"cancelled_at,omitempty"`
	CancellationReason *string                  `json:"cancellation_reason,omitempty"`
	PlanChangedAt      *types.Date              `json:"plan_changed_at,omitempty"`
	ProrationCredit    *decimal.Decimal         `json:"proration_credit,omitempty"`
	Metadata           types.Metadata           `json:"metadata,omitempty"`
}

func (r *ImportLegacySubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.SubscriptionStatus.Validate(); err != nil {
		return err
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ierr.NewError("start_date and end_date are required").
			WithHint("Start date and end date are required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToSubscription builds the subscription to persist. The id is kept when given.
func (r *ImportLegacySubscriptionRequest) ToSubscription() *subscription.Subscription {
	id := r.ID
	if id == "" {
		id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION)
	}
	return &subscription.Subscription{
		ID:                 id,
		SubscriberID:       r.SubscriberID,
		PlanID:             r.PlanID,
		PreviousPlanID:     r.PreviousPlanID,
		InvoiceID:          r.InvoiceID,
		SubscriptionStatus: r.SubscriptionStatus,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		IsTrial:            r.IsTrial,
		TrialEndDate:       r.TrialEndDate,
		AutoRenew:          r.AutoRenew,
		RenewalCount:       r.RenewalCount,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		PlanChangedAt:      r.PlanChangedAt,
		ProrationCredit:    r.ProrationCredit,
		Metadata:           r.Metadata,
	}
}

type ChangePlanRequest struct {
	NewPlanID string `json:"new_plan_id" validate:"required"`
	// Immediate restarts the billing period today on the new plan's cycle.
	// Otherwise the new plan takes effect at the next renewal.
	Immediate bool `json:"immediate"`
	// Prorate stores the unused value of the current period as a credit
	Prorate bool `json:"prorate"`
}

func (r *ChangePlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CancelSubscriptionRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
	// Immediate ends service today. Otherwise the subscription serves until
	// its end date and is then finalized as cancelled.
	Immediate bool `json:"immediate"`
}

func (r *CancelSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

type ListSubscriptionsResponse struct {
	Items      []*SubscriptionResponse  `json:"items"`
	Total      int                      `json:"total"`
	Pagination types.PaginationResponse `json:"pagination"`
}

func NewListSubscriptionsResponse(subs []*subscription.Subscription, limit int) *ListSubscriptionsResponse {
	items := lo.Map(subs, func(s *subscription.Subscription, _ int) *SubscriptionResponse {
		return &SubscriptionResponse{Subscription: s}
	})
	lastID := ""
	if len(subs) > 0 {
		lastID = subs[len(subs)-1].ID
	}
	return &ListSubscriptionsResponse{
		Items:      items,
		Total:      len(items),
		Pagination: types.NewPaginationResponse(lastID, len(items), limit),
	}
}
