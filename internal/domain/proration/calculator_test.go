package proration

import (
	"testing"
	"time"

	"github.com/flexprice/lifecycle/internal/domain/plan"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCredit(t *testing.T) {
	start := types.NewDate(2024, time.January, 1)
	end := types.NewDate(2024, time.April, 10)

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "day 60 of a 100 day period",
			params: Params{PeriodStart: start, PeriodEnd: end, Today: types.NewDate(2024, time.March, 1), Price: decimal.NewFromInt(1200)},
			want:   "480",
		},
		{
			name:   "first day is worth the full price",
			params: Params{PeriodStart: start, PeriodEnd: end, Today: start, Price: decimal.NewFromInt(1200)},
			want:   "1200",
		},
		{
			name:   "last day leaves nothing",
			params: Params{PeriodStart: start, PeriodEnd: end, Today: end, Price: decimal.NewFromInt(1200)},
			want:   "0",
		},
		{
			name:   "past the end",
			params: Params{PeriodStart: start, PeriodEnd: end, Today: end.AddDays(5), Price: decimal.NewFromInt(1200)},
			want:   "0",
		},
		{
			name:   "zero length period",
			params: Params{PeriodStart: start, PeriodEnd: start, Today: start.AddDays(-3), Price: decimal.NewFromInt(1200)},
			want:   "0",
		},
		{
			name:   "inverted period",
			params: Params{PeriodStart: end, PeriodEnd: start, Today: start.AddDays(-3), Price: decimal.NewFromInt(1200)},
			want:   "0",
		},
		{
			name:   "rounds half up to cents",
			params: Params{PeriodStart: types.NewDate(2024, time.March, 1), PeriodEnd: types.NewDate(2024, time.March, 31), Today: types.NewDate(2024, time.March, 15), Price: decimal.NewFromInt(20)},
			// 20 / 30 * 16 = 10.6666...
			want: "10.67",
		},
		{
			name:   "exact half cent rounds up",
			params: Params{PeriodStart: start, PeriodEnd: start.AddDays(8), Today: start.AddDays(7), Price: decimal.RequireFromString("0.36")},
			// 0.36 / 8 * 1 = 0.045
			want: "0.05",
		},
		{
			name:   "half cent behind a repeating daily rate rounds up",
			params: Params{PeriodStart: types.NewDate(2024, time.January, 1), PeriodEnd: types.NewDate(2024, time.January, 31), Today: types.NewDate(2024, time.January, 16), Price: decimal.RequireFromString("12.55")},
			// 12.55 / 30 * 15 = 6.275 exactly, 12.55 / 30 alone does not terminate
			want: "6.28",
		},
		{
			name:   "repeating daily rate just below half a cent rounds down",
			params: Params{PeriodStart: types.NewDate(2024, time.January, 1), PeriodEnd: types.NewDate(2024, time.January, 31), Today: types.NewDate(2024, time.January, 30), Price: decimal.RequireFromString("12.55")},
			// 12.55 / 30 * 1 = 0.41833...
			want: "0.42",
		},
		{
			name:   "period not yet started is capped at the price",
			params: Params{PeriodStart: start, PeriodEnd: end, Today: start.AddDays(-10), Price: decimal.NewFromInt(1200)},
			want:   "1200",
		},
		{
			name:   "free plan",
			params: Params{PeriodStart: start, PeriodEnd: end, Today: start.AddDays(10), Price: decimal.Zero},
			want:   "0",
		},
	}

	c := NewCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Credit(tt.params)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCreditFor(t *testing.T) {
	sub := &subscription.Subscription{
		StartDate: types.NewDate(2024, time.January, 1),
		EndDate:   types.NewDate(2024, time.April, 10),
	}
	p := &plan.Plan{Price: decimal.NewFromInt(1200)}

	got := CreditFor(NewCalculator(), sub, p, types.NewDate(2024, time.March, 1))
	assert.Equal(t, "480.00", got.StringFixed(2))

	assert.True(t, CreditFor(NewCalculator(), nil, p, types.NewDate(2024, time.March, 1)).IsZero())
}
