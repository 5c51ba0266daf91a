package dto

import (
	"time"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
)

// SweepOutcome is the result of one subscription within a batch pass
type SweepOutcome string

const (
	SweepOutcomeSuccess SweepOutcome = "success"
	SweepOutcomeFailure SweepOutcome = "failure"
	// SweepOutcomeSkipped means the subscription no longer matched the pass
	// when it was re-read, usually because another writer got there first.
	SweepOutcomeSkipped SweepOutcome = "skipped"
	// SweepOutcomeNotProcessed marks items left untouched because the run was
	// cancelled. The next scheduled run picks them up again.
	SweepOutcomeNotProcessed SweepOutcome = "not_processed"
)

type SweepItemResult struct {
	SubscriptionID string       `json:"subscription_id"`
	Outcome        SweepOutcome `json:"outcome"`
	Error          string       `json:"error,omitempty"`
	Attempts       int          `json:"attempts"`

	// Subscription is the persisted state after a successful transition
	Subscription *subscription.Subscription `json:"-"`
}

// SweepSummary describes one batch pass over the due set.
type SweepSummary struct {
	Sweep      string     `json:"sweep"`
	RunID      string     `json:"run_id"`
	Today      types.Date `json:"today"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`

	TotalSelected int `json:"total_selected"`
	TotalSuccess  int `json:"total_success"`
	TotalFailed   int `json:"total_failed"`
	TotalSkipped  int `json:"total_skipped"`
	// TotalUnprocessed counts items left untouched because the run was cancelled
	TotalUnprocessed int  `json:"total_unprocessed"`
	Cancelled        bool `json:"cancelled"`

	Items []*SweepItemResult `json:"items"`
}

// Succeeded returns the subscriptions that transitioned in this pass, in id order.
func (s *SweepSummary) Succeeded() []*subscription.Subscription {
	out := make([]*subscription.Subscription, 0, s.TotalSuccess)
	for _, item := range s.Items {
		if item.Outcome == SweepOutcomeSuccess && item.Subscription != nil {
			out = append(out, item.Subscription)
		}
	}
	return out
}

// Failed returns the per-item failures of this pass.
func (s *SweepSummary) Failed() []*SweepItemResult {
	out := make([]*SweepItemResult, 0, s.TotalFailed)
	for _, item := range s.Items {
		if item.Outcome == SweepOutcomeFailure {
			out = append(out, item)
		}
	}
	return out
}

type RenewalResult struct {
	SubscriptionID string                     `json:"subscription_id"`
	NewEndDate     types.Date                 `json:"new_end_date"`
	RenewalCount   int                        `json:"renewal_count"`
	Subscription   *subscription.Subscription `json:"subscription"`
}

type ProcessRenewalsResponse struct {
	SweepSummary
	Renewals []*RenewalResult `json:"renewals"`
}

type ExpireTrialsResponse struct {
	SweepSummary
	Expired []*subscription.Subscription `json:"expired"`
}

type ExpireSubscriptionsResponse struct {
	// ExpiredPass transitions subscriptions past their end date without a
	// pending cancellation to EXPIRED
	ExpiredPass *SweepSummary `json:"expired_pass"`
	// CancelledPass finalizes pending cancellations past their end date
	CancelledPass *SweepSummary `json:"cancelled_pass"`

	Expired   []*subscription.Subscription `json:"expired"`
	Cancelled []*subscription.Subscription `json:"cancelled"`

	// RecentlyExpired holds every EXPIRED subscription whose end date lies in
	// the lookback window, whether or not it expired in this run
	RecentlyExpired []*subscription.Subscription `json:"recently_expired"`
	LookbackDays    int                          `json:"lookback_days"`
}
