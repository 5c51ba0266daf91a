package service

import (
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/proration"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/testutil"
	"github.com/flexprice/lifecycle/internal/types"
)

// lifecycleSuite seeds a small catalog shared by the service suites
type lifecycleSuite struct {
	testutil.BaseServiceTestSuite
}

func (s *lifecycleSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.SeedBillingCycle("cycle_100d", 100, types.DurationUnitDay)
	s.SeedBillingCycle("cycle_30d", 30, types.DurationUnitDay)
	s.SeedBillingCycle("cycle_month", 1, types.DurationUnitMonth)

	s.SeedPlan("plan_basic", "1200", "cycle_100d")
	s.SeedPlan("plan_pro", "3000", "cycle_month")
	s.SeedPlan("plan_30d", "300", "cycle_30d")
	s.SeedTrialPlan("plan_trial", "1200", "cycle_100d", 14, types.DurationUnitDay)
}

// params builds service dependencies over the suite fakes
func (s *lifecycleSuite) params() ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetClock(),
		stores.SubscriptionRepo,
		stores.PlanRepo,
		stores.BillingCycleRepo,
		proration.NewCalculator(),
		s.GetLocker(),
		s.GetPublisher(),
		nil,
	)
}

// paramsWithSweeper returns params with a private copy of the sweeper config
func (s *lifecycleSuite) paramsWithSweeper(mutate func(cfg *config.SweeperConfig)) ServiceParams {
	params := s.params()
	cfg := *params.Config
	mutate(&cfg.Sweeper)
	params.Config = &cfg
	return params
}

// seed stores an ACTIVE paid subscription on plan_30d ending on end
func (s *lifecycleSuite) seed(id string, end types.Date, mutate ...func(sub *subscription.Subscription)) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                 id,
		SubscriberID:       "cust_" + id,
		PlanID:             "plan_30d",
		SubscriptionStatus: types.SubscriptionStatusActive,
		StartDate:          end.AddDays(-30),
		EndDate:            end,
		AutoRenew:          true,
		Version:            1,
		CreatedAt:          s.GetClock().Now(),
		UpdatedAt:          s.GetClock().Now(),
	}
	for _, fn := range mutate {
		fn(sub)
	}
	s.Require().NoError(sub.Validate())
	s.Require().NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

// stored reads the persisted state of id
func (s *lifecycleSuite) stored(id string) *subscription.Subscription {
	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return sub
}

func (s *lifecycleSuite) assertPeriodInvariant(sub *subscription.Subscription) {
	s.False(sub.EndDate.Before(sub.StartDate), "end %s before start %s", sub.EndDate, sub.StartDate)
}

func date(s string) types.Date {
	return types.MustParseDate(s)
}
