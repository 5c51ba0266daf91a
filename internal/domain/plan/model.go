package plan

import (
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is immutable catalog data. The engine reads plans but never writes them.
type Plan struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Price          decimal.Decimal `db:"price" json:"price"`
	BillingCycleID string          `db:"billing_cycle_id" json:"billing_cycle_id"`

	TrialEnabled      bool                `db:"trial_enabled" json:"trial_enabled"`
	TrialDuration     *int                `db:"trial_duration" json:"trial_duration,omitempty"`
	TrialDurationUnit *types.DurationUnit `db:"trial_duration_unit" json:"trial_duration_unit,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OffersTrial reports whether a subscription to this plan can start in trial.
func (p *Plan) OffersTrial() bool {
	return p.TrialEnabled && p.TrialDuration != nil && *p.TrialDuration > 0
}

// TrialUnit returns the trial duration unit, defaulting to days when unset.
func (p *Plan) TrialUnit() types.DurationUnit {
	if p.TrialDurationUnit == nil || *p.TrialDurationUnit == "" {
		return types.DurationUnitDay
	}
	return *p.TrialDurationUnit
}

// TrialEndDate returns the date a trial starting at start ends.
func (p *Plan) TrialEndDate(start types.Date) (types.Date, error) {
	if !p.OffersTrial() {
		return start, ierr.NewError("plan does not offer a trial").
			WithHintf("Plan %s does not offer a trial", p.ID).
			Mark(ierr.ErrInvalidOperation)
	}
	end, err := types.NextBillingDate(start, *p.TrialDuration, p.TrialUnit())
	if err != nil {
		return start, ierr.WithError(err).
			WithHint("Failed to compute trial end date").
			Mark(ierr.ErrValidation)
	}
	return end, nil
}

func (p *Plan) Validate() error {
	if p.Price.IsNegative() {
		return ierr.NewError("plan price must not be negative").
			WithHint("Plan price must not be negative").
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
				"price":   p.Price.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if p.BillingCycleID == "" {
		return ierr.NewError("plan has no billing cycle").
			WithHint("Plan must reference a billing cycle").
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	if p.TrialDurationUnit != nil && *p.TrialDurationUnit != "" {
		if err := p.TrialDurationUnit.Validate(); err != nil {
			return err
		}
	}
	return nil
}
