package plan

import (
	"testing"
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffersTrial(t *testing.T) {
	assert.False(t, (&Plan{TrialEnabled: true}).OffersTrial())
	assert.False(t, (&Plan{TrialEnabled: false, TrialDuration: lo.ToPtr(14)}).OffersTrial())
	assert.False(t, (&Plan{TrialEnabled: true, TrialDuration: lo.ToPtr(0)}).OffersTrial())
	assert.True(t, (&Plan{TrialEnabled: true, TrialDuration: lo.ToPtr(14)}).OffersTrial())
}

func TestTrialEndDate(t *testing.T) {
	p := &Plan{
		ID:                "plan_trial",
		TrialEnabled:      true,
		TrialDuration:     lo.ToPtr(14),
		TrialDurationUnit: lo.ToPtr(types.DurationUnitDay),
	}
	got, err := p.TrialEndDate(types.NewDate(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, types.NewDate(2024, time.June, 15), got)

	p.TrialDurationUnit = nil
	got, err = p.TrialEndDate(types.NewDate(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, types.NewDate(2024, time.June, 15), got, "unit defaults to days")

	p.TrialDurationUnit = lo.ToPtr(types.DurationUnitMonth)
	p.TrialDuration = lo.ToPtr(1)
	got, err = p.TrialEndDate(types.NewDate(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, types.NewDate(2024, time.February, 29), got)
}

func TestTrialEndDate_NoTrial(t *testing.T) {
	_, err := (&Plan{ID: "plan_basic"}).TrialEndDate(types.NewDate(2024, time.June, 1))
	assert.True(t, ierr.IsInvalidOperation(err))
}

func TestValidate(t *testing.T) {
	valid := &Plan{ID: "plan_1", Price: decimal.NewFromInt(10), BillingCycleID: "cycle_1"}
	require.NoError(t, valid.Validate())

	negative := &Plan{ID: "plan_2", Price: decimal.NewFromInt(-1), BillingCycleID: "cycle_1"}
	assert.True(t, ierr.IsValidation(negative.Validate()))

	noCycle := &Plan{ID: "plan_3", Price: decimal.Zero}
	assert.True(t, ierr.IsValidation(noCycle.Validate()))

	badUnit := &Plan{ID: "plan_4", BillingCycleID: "cycle_1", TrialDurationUnit: lo.ToPtr(types.DurationUnit("hour"))}
	assert.True(t, ierr.IsValidation(badUnit.Validate()))
}
