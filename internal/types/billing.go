package types

import (
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/samber/lo"
)

// DurationUnit is the unit of a billing cycle or trial duration
type DurationUnit string

const (
	DurationUnitDay   DurationUnit = "day"
	DurationUnitWeek  DurationUnit = "week"
	DurationUnitMonth DurationUnit = "month"
	DurationUnitYear  DurationUnit = "year"
)

func (u DurationUnit) String() string {
	return string(u)
}

func (u DurationUnit) Validate() error {
	allowed := []DurationUnit{
		DurationUnitDay,
		DurationUnitWeek,
		DurationUnitMonth,
		DurationUnitYear,
	}
	if !lo.Contains(allowed, u) {
		return ierr.NewError("invalid duration unit").
			WithHint("Duration unit must be one of day, week, month or year").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": u,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
