package service

import (
	"context"

	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// ExpirationService reconciles subscriptions whose trial or period ended and
// surfaces the ones approaching a boundary.
type ExpirationService interface {
	HandleExpiredTrials(ctx context.Context) (*dto.ExpireTrialsResponse, error)
	// HandleExpiredSubscriptions expires ended periods, finalizes pending
	// cancellations and reports EXPIRED subscriptions whose end date lies in
	// the last lookbackDays days.
	HandleExpiredSubscriptions(ctx context.Context, lookbackDays int) (*dto.ExpireSubscriptionsResponse, error)
	GetTrialsEndingSoon(ctx context.Context, daysRemaining int) ([]*subscription.Subscription, error)
	GetExpireSoonSubscriptions(ctx context.Context, withinDays int) ([]*subscription.Subscription, error)
}

type expirationService struct {
	ServiceParams
	subs    *subscriptionService
	sweeper *sweeper
}

func NewExpirationService(params ServiceParams) ExpirationService {
	subs := newSubscriptionService(params)
	return &expirationService{
		ServiceParams: params,
		subs:          subs,
		sweeper:       newSweeper(params, subs),
	}
}

// ExpiredTrialsFilter selects running trials that ended before today.
// Pending cancellations are left to the cancellation pass so they end as
// CANCELLED.
func ExpiredTrialsFilter(today types.Date) *types.SubscriptionFilter {
	return &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
		IsTrial:            lo.ToPtr(true),
		HasCancelledAt:     lo.ToPtr(false),
		TrialEndDate:       &types.DateRangeFilter{To: lo.ToPtr(today.AddDays(-1))},
	}
}

// ExpiredPeriodFilter selects ACTIVE subscriptions past their end date
// without a pending cancellation.
func ExpiredPeriodFilter(today types.Date) *types.SubscriptionFilter {
	return &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
		HasCancelledAt:     lo.ToPtr(false),
		EndDate:            &types.DateRangeFilter{To: lo.ToPtr(today.AddDays(-1))},
	}
}

// PendingCancellationFilter selects pending cancellations past their end date.
func PendingCancellationFilter(today types.Date) *types.SubscriptionFilter {
	return &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
		HasCancelledAt:     lo.ToPtr(true),
		EndDate:            &types.DateRangeFilter{To: lo.ToPtr(today.AddDays(-1))},
	}
}

func (s *expirationService) HandleExpiredTrials(ctx context.Context) (*dto.ExpireTrialsResponse, error) {
	today := s.today()

	summary, err := s.sweeper.run(ctx, sweepPass{
		name:   SweepExpiredTrials,
		filter: ExpiredTrialsFilter(today),
		apply:  s.subs.applyExpireTrial,
	}, today)
	if err != nil {
		return nil, err
	}

	return &dto.ExpireTrialsResponse{
		SweepSummary: *summary,
		Expired:      summary.Succeeded(),
	}, nil
}

func (s *expirationService) HandleExpiredSubscriptions(ctx context.Context, lookbackDays int) (*dto.ExpireSubscriptionsResponse, error) {
	if lookbackDays < 0 {
		return nil, ierr.NewError("lookback days must not be negative").
			WithHint("Lookback days must be zero or positive").
			WithReportableDetails(map[string]any{
				"lookback_days": lookbackDays,
			}).
			Mark(ierr.ErrValidation)
	}

	today := s.today()

	// the two passes select disjoint sets so their order does not matter
	expiredPass, err := s.sweeper.run(ctx, sweepPass{
		name:   SweepExpiredSubscriptions,
		filter: ExpiredPeriodFilter(today),
		apply:  s.subs.applyExpire,
	}, today)
	if err != nil {
		return nil, err
	}

	cancelledPass, err := s.sweeper.run(ctx, sweepPass{
		name:   SweepPendingCancellations,
		filter: PendingCancellationFilter(today),
		apply:  s.subs.applyFinalizeCancellation,
	}, today)
	if err != nil {
		return nil, err
	}

	resp := &dto.ExpireSubscriptionsResponse{
		ExpiredPass:     expiredPass,
		CancelledPass:   cancelledPass,
		Expired:         expiredPass.Succeeded(),
		Cancelled:       cancelledPass.Succeeded(),
		RecentlyExpired: make([]*subscription.Subscription, 0),
		LookbackDays:    lookbackDays,
	}

	// a cancelled run still reports what it committed so the caller can
	// publish it, but the report query is skipped
	if expiredPass.Cancelled || cancelledPass.Cancelled || ctx.Err() != nil {
		s.Logger.Warnw("expiration run cancelled, skipping recently expired report",
			"expired", len(resp.Expired),
			"cancelled", len(resp.Cancelled))
		return resp, nil
	}

	// end dates in [today - lookbackDays, today)
	recentlyExpired, err := s.SubRepo.List(ctx, &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusExpired},
		EndDate: &types.DateRangeFilter{
			From: lo.ToPtr(today.AddDays(-lookbackDays)),
			To:   lo.ToPtr(today.AddDays(-1)),
		},
	})
	if err != nil {
		// both passes already committed, so only the report is lost
		s.Logger.Errorw("failed to list recently expired subscriptions",
			"lookback_days", lookbackDays,
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list recently expired subscriptions").
			Mark(ierr.ErrDatabase)
	}

	resp.RecentlyExpired = recentlyExpired
	return resp, nil
}

func (s *expirationService) GetTrialsEndingSoon(ctx context.Context, daysRemaining int) ([]*subscription.Subscription, error) {
	if daysRemaining < 0 {
		return nil, ierr.NewError("days remaining must not be negative").
			WithHint("Days remaining must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	today := s.today()
	return s.SubRepo.List(ctx, &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
		IsTrial:            lo.ToPtr(true),
		TrialEndDate: &types.DateRangeFilter{
			From: lo.ToPtr(today),
			To:   lo.ToPtr(today.AddDays(daysRemaining)),
		},
	})
}

func (s *expirationService) GetExpireSoonSubscriptions(ctx context.Context, withinDays int) ([]*subscription.Subscription, error) {
	if withinDays < 0 {
		return nil, ierr.NewError("within days must not be negative").
			WithHint("Within days must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	today := s.today()
	return s.SubRepo.List(ctx, &types.SubscriptionFilter{
		SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
		EndDate: &types.DateRangeFilter{
			From: lo.ToPtr(today),
			To:   lo.ToPtr(today.AddDays(withinDays)),
		},
	})
}
