package service

import (
	"context"
	"testing"

	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	lifecycleSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.lifecycleSuite.SetupTest()
	s.service = NewSubscriptionService(s.params())
}

func (s *SubscriptionServiceSuite) create(planID string, startTrial bool) *subscription.Subscription {
	resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		SubscriberID: "cust_1",
		PlanID:       planID,
		StartTrial:   startTrial,
	})
	s.Require().NoError(err)
	return resp.Subscription
}

func (s *SubscriptionServiceSuite) TestCreateSubscription() {
	s.SetToday(date("2024-01-01"))

	sub := s.create("plan_basic", false)

	s.Equal(types.SubscriptionStatusPending, sub.SubscriptionStatus)
	s.Equal("2024-01-01", sub.StartDate.String())
	s.Equal("2024-04-10", sub.EndDate.String())
	s.Equal(0, sub.RenewalCount)
	s.True(sub.AutoRenew)
	s.False(sub.IsTrial)
	s.Nil(sub.TrialEndDate)
	s.Equal(1, sub.Version)
	s.Contains(sub.ID, types.UUID_PREFIX_SUBSCRIPTION+"_")

	stored := s.stored(sub.ID)
	s.Equal(sub.EndDate, stored.EndDate)
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionWithTrial() {
	s.SetToday(date("2024-06-01"))

	sub := s.create("plan_trial", true)

	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
	s.True(sub.IsTrial)
	s.Require().NotNil(sub.TrialEndDate)
	s.Equal("2024-06-15", sub.TrialEndDate.String())
	s.Equal("2024-06-15", sub.EndDate.String())
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionTrialRequestedOnPlanWithoutTrial() {
	s.SetToday(date("2024-01-01"))

	sub := s.create("plan_basic", true)

	s.Equal(types.SubscriptionStatusPending, sub.SubscriptionStatus)
	s.False(sub.IsTrial)
	s.Equal("2024-04-10", sub.EndDate.String())
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionHonoursAutoRenew() {
	resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		SubscriberID: "cust_1",
		PlanID:       "plan_basic",
		AutoRenew:    lo.ToPtr(false),
		InvoiceID:    lo.ToPtr("inv_1"),
		Metadata:     types.Metadata{"channel": "web"},
	})
	s.Require().NoError(err)
	s.False(resp.AutoRenew)
	s.Equal("inv_1", lo.FromPtr(resp.InvoiceID))
	s.Equal("web", resp.Metadata["channel"])
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionErrors() {
	_, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		SubscriberID: "cust_1",
		PlanID:       "plan_missing",
	})
	s.True(ierr.IsNotFound(err))

	_, err = s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		PlanID: "plan_basic",
	})
	s.True(ierr.IsValidation(err))

	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *SubscriptionServiceSuite) TestImportLegacySubscription() {
	s.SetToday(date("2024-05-01"))

	resp, err := s.service.ImportLegacySubscription(s.GetContext(), dto.ImportLegacySubscriptionRequest{
		ID:                 "subs_legacy",
		SubscriberID:       "cust_1",
		PlanID:             "plan_basic",
		SubscriptionStatus: types.SubscriptionStatusActive,
		StartDate:          date("2023-12-01"),
		EndDate:            date("2024-03-10"),
		AutoRenew:          false,
		RenewalCount:       4,
		CancelledAt:        lo.ToPtr(date("2024-02-01")),
		CancellationReason: lo.ToPtr("moving"),
	})
	s.Require().NoError(err)

	stored := s.stored("subs_legacy")
	s.Equal(resp.ID, stored.ID)
	s.Equal(4, stored.RenewalCount)
	s.Equal("2024-03-10", stored.EndDate.String())
	s.True(stored.IsPendingCancellation())
	s.Equal(1, stored.Version)
}

func (s *SubscriptionServiceSuite) TestImportLegacySubscriptionRejectsBrokenInvariants() {
	tests := []struct {
		name string
		req  dto.ImportLegacySubscriptionRequest
		is   func(error) bool
	}{
		{
			name: "end before start",
			req: dto.ImportLegacySubscriptionRequest{
				SubscriberID: "cust_1", PlanID: "plan_basic",
				SubscriptionStatus: types.SubscriptionStatusActive,
				StartDate:          date("2024-02-01"), EndDate: date("2024-01-01"),
			},
			is: ierr.IsValidation,
		},
		{
			name: "cancelled but auto renewing",
			req: dto.ImportLegacySubscriptionRequest{
				SubscriberID: "cust_1", PlanID: "plan_basic",
				SubscriptionStatus: types.SubscriptionStatusCancelled,
				StartDate:          date("2024-01-01"), EndDate: date("2024-02-01"),
				AutoRenew: true,
			},
			is: ierr.IsValidation,
		},
		{
			name: "unknown status",
			req: dto.ImportLegacySubscriptionRequest{
				SubscriberID: "cust_1", PlanID: "plan_basic",
				SubscriptionStatus: "paused",
				StartDate:          date("2024-01-01"), EndDate: date("2024-02-01"),
			},
			is: ierr.IsValidation,
		},
		{
			name: "unknown plan",
			req: dto.ImportLegacySubscriptionRequest{
				SubscriberID: "cust_1", PlanID: "plan_missing",
				SubscriptionStatus: types.SubscriptionStatusActive,
				StartDate:          date("2024-01-01"), EndDate: date("2024-02-01"),
			},
			is: ierr.IsNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.ImportLegacySubscription(s.GetContext(), tt.req)
			s.Require().Error(err)
			s.True(tt.is(err), "unexpected error %v", err)
		})
	}
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *SubscriptionServiceSuite) TestGetSubscription() {
	sub := s.seed("subs_a", date("2024-01-31"))

	resp, err := s.service.GetSubscription(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, resp.ID)

	_, err = s.service.GetSubscription(s.GetContext(), "subs_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestListSubscriptions() {
	s.seed("subs_a", date("2024-01-31"))
	s.seed("subs_b", date("2024-01-31"), func(sub *subscription.Subscription) {
		sub.SubscriptionStatus = types.SubscriptionStatusExpired
	})

	resp, err := s.service.ListSubscriptions(s.GetContext(), &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
	})
	s.Require().NoError(err)
	s.Equal(1, resp.Total)
	s.Equal("subs_a", resp.Items[0].ID)
	s.False(resp.Pagination.HasMore)

	s.seed("subs_c", date("2024-01-31"))
	page, err := s.service.ListSubscriptions(s.GetContext(), &types.SubscriptionFilter{Limit: 2})
	s.Require().NoError(err)
	s.True(page.Pagination.HasMore)
	s.Equal("subs_b", page.Pagination.NextAfterID)

	page, err = s.service.ListSubscriptions(s.GetContext(), &types.SubscriptionFilter{
		Limit:   2,
		AfterID: page.Pagination.NextAfterID,
	})
	s.Require().NoError(err)
	s.Equal(1, page.Total)
	s.Equal("subs_c", page.Items[0].ID)
	s.False(page.Pagination.HasMore)

	_, err = s.service.ListSubscriptions(s.GetContext(), &types.SubscriptionFilter{Limit: -1})
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestActivateSubscription() {
	s.SetToday(date("2024-01-01"))
	sub := s.create("plan_basic", false)

	resp, err := s.service.ActivateSubscription(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Equal(sub.StartDate, resp.StartDate)
	s.Equal(sub.EndDate, resp.EndDate)
	s.Equal(2, resp.Version)

	_, err = s.service.ActivateSubscription(s.GetContext(), sub.ID)
	s.True(ierr.IsInvalidState(err))
}

func (s *SubscriptionServiceSuite) TestRenewSubscriptionAnchorsToOldEndDate() {
	// renewal runs late but the new period still starts at the old end date
	s.SetToday(date("2024-02-10"))
	sub := s.seed("subs_a", date("2024-01-31"), func(sub *subscription.Subscription) {
		sub.PlanID = "plan_pro"
		sub.RenewalCount = 2
	})

	resp, err := s.service.RenewSubscription(s.GetContext(), sub.ID)
	s.Require().NoError(err)

	s.Equal("2024-02-29", resp.EndDate.String())
	s.Equal(sub.StartDate, resp.StartDate)
	s.Equal(3, resp.RenewalCount)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.assertPeriodInvariant(resp.Subscription)
}

func (s *SubscriptionServiceSuite) TestRenewSubscriptionClearsTrial() {
	s.SetToday(date("2024-06-01"))
	sub := s.create("plan_trial", true)

	resp, err := s.service.RenewSubscription(s.GetContext(), sub.ID)
	s.Require().NoError(err)

	s.False(resp.IsTrial)
	s.Nil(resp.TrialEndDate)
	// 2024-06-15 + 100 days
	s.Equal("2024-09-23", resp.EndDate.String())
	s.Equal(1, resp.RenewalCount)
}

func (s *SubscriptionServiceSuite) TestRenewSubscriptionPending() {
	s.SetToday(date("2024-01-01"))
	sub := s.create("plan_basic", false)

	resp, err := s.service.RenewSubscription(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Equal("2024-07-19", resp.EndDate.String())
}

func (s *SubscriptionServiceSuite) TestRenewSubscriptionRejectsTerminalStates() {
	cancelled := s.seed("subs_cancelled", date("2024-01-31"), func(sub *subscription.Subscription) {
		sub.SubscriptionStatus = types.SubscriptionStatusCancelled
		sub.AutoRenew = false
		sub.CancelledAt = lo.ToPtr(date("2024-01-15"))
	})
	expired := s.seed("subs_expired", date("2024-01-31"), func(sub *subscription.Subscription) {
		sub.SubscriptionStatus = types.SubscriptionStatusExpired
	})

	for _, sub := range []*subscription.Subscription{cancelled, expired} {
		_, err := s.service.RenewSubscription(s.GetContext(), sub.ID)
		s.True(ierr.IsInvalidState(err), "renew %s", sub.SubscriptionStatus)

		after := s.stored(sub.ID)
		s.Equal(sub.EndDate, after.EndDate)
		s.Equal(sub.RenewalCount, after.RenewalCount)
		s.Equal(sub.Version, after.Version)
	}
	s.Equal(0, s.GetStores().SubscriptionRepo.Updates())

	_, err := s.service.RenewSubscription(s.GetContext(), "subs_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestRenewSubscriptionLosesRaceWithConcurrentWriter() {
	sub := s.seed("subs_a", date("2024-01-31"))
	store := s.GetStores().SubscriptionRepo

	raced := false
	store.BeforeUpdate(func(ctx context.Context, _ *subscription.Subscription) {
		if raced {
			return
		}
		raced = true
		// another writer renews first
		_, err := s.service.RenewSubscription(context.Background(), sub.ID)
		s.Require().NoError(err)
	})

	_, err := s.service.RenewSubscription(s.GetContext(), sub.ID)
	s.True(ierr.IsVersionConflict(err))

	after := s.stored(sub.ID)
	s.Equal(1, after.RenewalCount)
	s.Equal("2024-03-01", after.EndDate.String())
}

func (s *SubscriptionServiceSuite) TestConvertTrialToPaid() {
	s.SetToday(date("2024-06-01"))
	sub := s.create("plan_trial", true)

	s.SetToday(date("2024-06-05"))
	resp, err := s.service.ConvertTrialToPaid(s.GetContext(), sub.ID)
	s.Require().NoError(err)

	s.False(resp.IsTrial)
	s.Nil(resp.TrialEndDate)
	s.Equal("2024-06-05", resp.StartDate.String())
	s.Equal("2024-09-13", resp.EndDate.String())
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Equal(0, resp.RenewalCount)
}

func (s *SubscriptionServiceSuite) TestConvertTrialToPaidRejectsNonTrial() {
	sub := s.seed("subs_a", date("2024-01-31"))

	_, err := s.service.ConvertTrialToPaid(s.GetContext(), sub.ID)
	s.True(ierr.IsInvalidState(err))
	s.Equal(sub.Version, s.stored(sub.ID).Version)
}

func (s *SubscriptionServiceSuite) TestChangePlanWithProration() {
	s.SetToday(date("2024-01-01"))
	sub := s.create("plan_basic", false)
	_, err := s.service.ActivateSubscription(s.GetContext(), sub.ID)
	s.Require().NoError(err)

	// day 60 of the period, 40 days remaining
	s.SetToday(date("2024-03-01"))
	resp, err := s.service.ChangePlan(s.GetContext(), sub.ID, dto.ChangePlanRequest{
		NewPlanID: "plan_pro",
		Immediate: false,
		Prorate:   true,
	})
	s.Require().NoError(err)

	s.Require().NotNil(resp.ProrationCredit)
	s.True(decimal.RequireFromString("480.00").Equal(*resp.ProrationCredit), "credit %s", resp.ProrationCredit)
	s.Equal("2024-04-10", resp.EndDate.String())
	s.Equal("2024-01-01", resp.StartDate.String())
	s.Equal("plan_pro", resp.PlanID)
	s.Equal("plan_basic", lo.FromPtr(resp.PreviousPlanID))
	s.Equal("2024-03-01", resp.PlanChangedAt.String())
}

func (s *SubscriptionServiceSuite) TestChangePlanImmediate() {
	s.SetToday(date("2024-01-20"))
	sub := s.seed("subs_a", date("2024-01-31"), func(sub *subscription.Subscription) {
		sub.PlanID = "plan_basic"
		sub.StartDate = date("2023-10-23")
	})

	resp, err := s.service.ChangePlan(s.GetContext(), sub.ID, dto.ChangePlanRequest{
		NewPlanID: "plan_pro",
		Immediate: true,
	})
	s.Require().NoError(err)

	s.Equal("2024-01-20", resp.StartDate.String())
	s.Equal("2024-02-20", resp.EndDate.String())
	s.Nil(resp.ProrationCredit)
	s.Equal("plan_basic", lo.FromPtr(resp.PreviousPlanID))
}

func (s *SubscriptionServiceSuite) TestChangePlanNonImmediateKeepsTrial() {
	s.SetToday(date("2024-06-01"))
	sub := s.create("plan_trial", true)

	resp, err := s.service.ChangePlan(s.GetContext(), sub.ID, dto.ChangePlanRequest{NewPlanID: "plan_pro"})
	s.Require().NoError(err)
	s.True(resp.IsTrial)
	s.Equal(resp.EndDate, *resp.TrialEndDate)
}

func (s *SubscriptionServiceSuite) TestChangePlanErrors() {
	s.SetToday(date("2024-01-01"))
	pending := s.create("plan_basic", false)
	active := s.seed("subs_active", date("2024-01-31"))

	_, err := s.service.ChangePlan(s.GetContext(), pending.ID, dto.ChangePlanRequest{NewPlanID: "plan_pro"})
	s.True(ierr.IsInvalidState(err))

	_, err = s.service.ChangePlan(s.GetContext(), active.ID, dto.ChangePlanRequest{NewPlanID: "plan_missing"})
	s.True(ierr.IsNotFound(err))

	_, err = s.service.ChangePlan(s.GetContext(), "subs_missing", dto.ChangePlanRequest{NewPlanID: "plan_pro"})
	s.True(ierr.IsNotFound(err))

	_, err = s.service.ChangePlan(s.GetContext(), active.ID, dto.ChangePlanRequest{NewPlanID: active.PlanID})
	s.True(ierr.IsValidation(err))

	_, err = s.service.ChangePlan(s.GetContext(), active.ID, dto.ChangePlanRequest{})
	s.True(ierr.IsValidation(err))

	s.Equal(0, s.GetStores().SubscriptionRepo.Updates())
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionImmediate() {
	s.SetToday(date("2024-01-10"))
	sub := s.seed("subs_a", date("2024-01-31"))

	resp, err := s.service.CancelSubscription(s.GetContext(), sub.ID, dto.CancelSubscriptionRequest{
		Reason:    lo.ToPtr("too expensive"),
		Immediate: true,
	})
	s.Require().NoError(err)

	s.Equal(types.SubscriptionStatusCancelled, resp.SubscriptionStatus)
	s.Equal("2024-01-10", resp.EndDate.String())
	s.False(resp.AutoRenew)
	s.Equal("2024-01-10", resp.CancelledAt.String())
	s.Equal("too expensive", lo.FromPtr(resp.CancellationReason))
	s.assertPeriodInvariant(resp.Subscription)
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionImmediateDuringTrial() {
	s.SetToday(date("2024-06-01"))
	sub := s.create("plan_trial", true)

	s.SetToday(date("2024-06-03"))
	resp, err := s.service.CancelSubscription(s.GetContext(), sub.ID, dto.CancelSubscriptionRequest{Immediate: true})
	s.Require().NoError(err)
	s.False(resp.IsTrial)
	s.Equal("2024-06-03", resp.EndDate.String())
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionAtPeriodEnd() {
	s.SetToday(date("2024-12-01"))
	sub := s.seed("subs_a", date("2024-12-31"))

	resp, err := s.service.CancelSubscription(s.GetContext(), sub.ID, dto.CancelSubscriptionRequest{})
	s.Require().NoError(err)

	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.False(resp.AutoRenew)
	s.Equal("2024-12-01", resp.CancelledAt.String())
	s.Equal("2024-12-31", resp.EndDate.String())
	s.True(resp.IsPendingCancellation())
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionAtPeriodEndRequiresActive() {
	s.SetToday(date("2024-01-01"))
	pending := s.create("plan_basic", false)

	_, err := s.service.CancelSubscription(s.GetContext(), pending.ID, dto.CancelSubscriptionRequest{})
	s.True(ierr.IsInvalidState(err))
	s.Equal(types.SubscriptionStatusPending, s.stored(pending.ID).SubscriptionStatus)
	s.Nil(s.stored(pending.ID).CancelledAt)

	resp, err := s.service.CancelSubscription(s.GetContext(), pending.ID, dto.CancelSubscriptionRequest{Immediate: true})
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.SubscriptionStatus)
	s.assertPeriodInvariant(resp.Subscription)
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionRejectsFinishedSubscriptions() {
	sub := s.seed("subs_a", date("2024-01-31"), func(sub *subscription.Subscription) {
		sub.SubscriptionStatus = types.SubscriptionStatusExpired
	})

	_, err := s.service.CancelSubscription(s.GetContext(), sub.ID, dto.CancelSubscriptionRequest{Immediate: true})
	s.True(ierr.IsInvalidState(err))
	_, err = s.service.CancelSubscription(s.GetContext(), sub.ID, dto.CancelSubscriptionRequest{})
	s.True(ierr.IsInvalidState(err))
}

func (s *SubscriptionServiceSuite) TestReactivateSubscription() {
	s.SetToday(date("2025-02-01"))
	sub := s.seed("subs_a", date("2024-12-31"), func(sub *subscription.Subscription) {
		sub.SubscriptionStatus = types.SubscriptionStatusCancelled
		sub.AutoRenew = false
		sub.CancelledAt = lo.ToPtr(date("2024-12-01"))
		sub.CancellationReason = lo.ToPtr("paused project")
	})

	resp, err := s.service.ReactivateSubscription(s.GetContext(), sub.ID)
	s.Require().NoError(err)

	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Equal("2025-02-01", resp.StartDate.String())
	s.Equal("2025-03-03", resp.EndDate.String())
	s.Nil(resp.CancelledAt)
	s.Nil(resp.CancellationReason)
	s.True(resp.AutoRenew)
}

func (s *SubscriptionServiceSuite) TestReactivateSubscriptionRejectsNonCancelled() {
	active := s.seed("subs_active", date("2024-01-31"))
	expired := s.seed("subs_expired", date("2024-01-31"), func(sub *subscription.Subscription) {
		sub.SubscriptionStatus = types.SubscriptionStatusExpired
	})

	_, err := s.service.ReactivateSubscription(s.GetContext(), active.ID)
	s.True(ierr.IsInvalidState(err))
	_, err = s.service.ReactivateSubscription(s.GetContext(), expired.ID)
	s.True(ierr.IsInvalidState(err))
}

func (s *SubscriptionServiceSuite) TestPeriodInvariantHoldsAcrossOperations() {
	s.SetToday(date("2024-01-31"))
	sub := s.create("plan_pro", false)
	s.assertPeriodInvariant(sub)

	steps := []func() (*dto.SubscriptionResponse, error){
		func() (*dto.SubscriptionResponse, error) { return s.service.ActivateSubscription(s.GetContext(), sub.ID) },
		func() (*dto.SubscriptionResponse, error) { return s.service.RenewSubscription(s.GetContext(), sub.ID) },
		func() (*dto.SubscriptionResponse, error) {
			return s.service.ChangePlan(s.GetContext(), sub.ID, dto.ChangePlanRequest{NewPlanID: "plan_30d", Immediate: true, Prorate: true})
		},
		func() (*dto.SubscriptionResponse, error) {
			return s.service.CancelSubscription(s.GetContext(), sub.ID, dto.CancelSubscriptionRequest{Immediate: true})
		},
		func() (*dto.SubscriptionResponse, error) { return s.service.ReactivateSubscription(s.GetContext(), sub.ID) },
	}
	for _, step := range steps {
		s.GetClock().AdvanceDays(3)
		resp, err := step()
		s.Require().NoError(err)
		s.assertPeriodInvariant(resp.Subscription)
		s.NoError(resp.Validate())
	}
}
