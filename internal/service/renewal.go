package service

import (
	"context"

	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// RenewalService renews every auto renewing subscription whose period ended.
type RenewalService interface {
	ProcessAutoRenewals(ctx context.Context) (*dto.ProcessRenewalsResponse, error)
}

type renewalService struct {
	ServiceParams
	subs    *subscriptionService
	sweeper *sweeper
}

func NewRenewalService(params ServiceParams) RenewalService {
	subs := newSubscriptionService(params)
	return &renewalService{
		ServiceParams: params,
		subs:          subs,
		sweeper:       newSweeper(params, subs),
	}
}

// DueForRenewalFilter selects ACTIVE auto renewing subscriptions whose end
// date is on or before today.
func DueForRenewalFilter(today types.Date) *types.SubscriptionFilter {
	return &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
		AutoRenew:          lo.ToPtr(true),
		EndDate:            &types.DateRangeFilter{To: lo.ToPtr(today)},
	}
}

func (s *renewalService) ProcessAutoRenewals(ctx context.Context) (*dto.ProcessRenewalsResponse, error) {
	today := s.today()

	summary, err := s.sweeper.run(ctx, sweepPass{
		name:   SweepRenewals,
		filter: DueForRenewalFilter(today),
		apply:  s.subs.applyRenew,
	}, today)
	if err != nil {
		return nil, err
	}

	renewals := lo.Map(summary.Succeeded(), func(sub *subscription.Subscription, _ int) *dto.RenewalResult {
		return &dto.RenewalResult{
			SubscriptionID: sub.ID,
			NewEndDate:     sub.EndDate,
			RenewalCount:   sub.RenewalCount,
			Subscription:   sub,
		}
	})

	return &dto.ProcessRenewalsResponse{
		SweepSummary: *summary,
		Renewals:     renewals,
	}, nil
}
