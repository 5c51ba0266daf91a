package billingcycle

import (
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
)

// BillingCycle is immutable catalog data describing how long one paid period lasts.
type BillingCycle struct {
	ID           string             `db:"id" json:"id"`
	Duration     int                `db:"duration" json:"duration"`
	DurationUnit types.DurationUnit `db:"duration_unit" json:"duration_unit"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}

func (b *BillingCycle) Validate() error {
	if b.Duration <= 0 {
		return ierr.NewError("billing cycle duration must be positive").
			WithHint("Billing cycle duration must be a positive integer").
			WithReportableDetails(map[string]any{
				"billing_cycle_id": b.ID,
				"duration":         b.Duration,
			}).
			Mark(ierr.ErrValidation)
	}
	return b.DurationUnit.Validate()
}

// NextEndDate returns the end of a period of this cycle starting at start.
func (b *BillingCycle) NextEndDate(start types.Date) (types.Date, error) {
	if err := b.Validate(); err != nil {
		return start, err
	}
	end, err := types.NextBillingDate(start, b.Duration, b.DurationUnit)
	if err != nil {
		return start, ierr.WithError(err).
			WithHint("Failed to compute billing period end date").
			Mark(ierr.ErrValidation)
	}
	return end, nil
}
