package proration

import (
	"github.com/flexprice/lifecycle/internal/domain/plan"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places credits are rounded to.
const CurrencyPrecision = 2

// Params is the input of a credit calculation. All dates are calendar days.
type Params struct {
	PeriodStart types.Date
	PeriodEnd   types.Date
	Today       types.Date
	Price       decimal.Decimal
}

// Calculator computes the unused value of the current period on a plan change.
type Calculator interface {
	// Credit never fails. Degenerate periods yield zero.
	Credit(params Params) decimal.Decimal
}

// NewCalculator returns the day based calculator used for plan changes.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

type dayBasedCalculator struct{}

// Credit returns round(price / totalDays * daysRemaining, 2).
// The product is taken before the division so the only rounding step sees the
// exact quotient. Rounding is half away from zero which is half-up for the
// non-negative amounts produced here.
func (c *dayBasedCalculator) Credit(params Params) decimal.Decimal {
	totalDays := types.DaysBetween(params.PeriodStart, params.PeriodEnd)
	daysRemaining := types.DaysBetween(params.Today, params.PeriodEnd)
	if totalDays <= 0 || daysRemaining <= 0 || params.Price.IsNegative() {
		return decimal.Zero
	}

	// a period that has not started yet is worth at most its full price
	if daysRemaining > totalDays {
		daysRemaining = totalDays
	}

	return params.Price.
		Mul(decimal.NewFromInt(int64(daysRemaining))).
		DivRound(decimal.NewFromInt(int64(totalDays)), CurrencyPrecision)
}

// CreditFor computes the credit for the subscription's current period priced at currentPlan.
func CreditFor(c Calculator, sub *subscription.Subscription, currentPlan *plan.Plan, today types.Date) decimal.Decimal {
	if sub == nil || currentPlan == nil {
		return decimal.Zero
	}
	return c.Credit(Params{
		PeriodStart: sub.StartDate,
		PeriodEnd:   sub.EndDate,
		Today:       today,
		Price:       currentPlan.Price,
	})
}
