package service

import (
	"context"

	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	"github.com/flexprice/lifecycle/internal/domain/proration"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService is the subscription state machine. Every operation
// reads the subscription, applies one transition and writes it back with a
// version check, so a racing writer fails instead of applying twice.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ImportLegacySubscription(ctx context.Context, req dto.ImportLegacySubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)

	ActivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	RenewSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ConvertTrialToPaid(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ChangePlan(ctx context.Context, id string, req dto.ChangePlanRequest) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, id string, req dto.CancelSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ReactivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return newSubscriptionService(params)
}

func newSubscriptionService(params ServiceParams) *subscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cycle, err := s.BillingCycleRepo.Get(ctx, p.BillingCycleID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	now := s.Clock.Now()
	sub := &subscription.Subscription{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		SubscriberID: req.SubscriberID,
		PlanID:       p.ID,
		InvoiceID:    req.InvoiceID,
		StartDate:    today,
		AutoRenew:    req.GetAutoRenew(),
		RenewalCount: 0,
		Metadata:     req.Metadata,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.StartTrial && p.OffersTrial() {
		trialEnd, err := p.TrialEndDate(today)
		if err != nil {
			return nil, err
		}
		sub.SubscriptionStatus = types.SubscriptionStatusActive
		sub.IsTrial = true
		sub.TrialEndDate = lo.ToPtr(trialEnd)
		sub.EndDate = trialEnd
	} else {
		if req.StartTrial {
			s.Logger.Debugw("plan does not offer a trial, creating a paid subscription",
				"plan_id", p.ID,
				"subscriber_id", req.SubscriberID)
		}
		end, err := cycle.NextEndDate(today)
		if err != nil {
			return nil, err
		}
		sub.SubscriptionStatus = types.SubscriptionStatusPending
		sub.EndDate = end
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"subscriber_id", sub.SubscriberID,
		"plan_id", sub.PlanID,
		"status", sub.SubscriptionStatus,
		"is_trial", sub.IsTrial,
		"end_date", sub.EndDate.String())

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// ImportLegacySubscription persists a complete subscription record from an
// existing system as given, after checking its invariants and plan.
func (s *subscriptionService) ImportLegacySubscription(ctx context.Context, req dto.ImportLegacySubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.PlanRepo.Get(ctx, req.PlanID); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	sub := req.ToSubscription()
	sub.Version = 1
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("imported legacy subscription",
		"subscription_id", sub.ID,
		"status", sub.SubscriptionStatus,
		"end_date", sub.EndDate.String())

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = &types.SubscriptionFilter{}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListSubscriptionsResponse(subs, filter.Limit), nil
}

func (s *subscriptionService) ActivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, subscription.OperationActivate, s.applyActivate)
}

func (s *subscriptionService) RenewSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, subscription.OperationRenew, s.applyRenew)
}

func (s *subscriptionService) ConvertTrialToPaid(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, subscription.OperationConvertTrial, s.applyConvertTrial)
}

func (s *subscriptionService) ChangePlan(ctx context.Context, id string, req dto.ChangePlanRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, subscription.OperationChangePlan,
		func(ctx context.Context, sub *subscription.Subscription, today types.Date) error {
			return s.applyChangePlan(ctx, sub, req, today)
		})
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id string, req dto.CancelSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	op := subscription.OperationCancelAtPeriodEnd
	if req.Immediate {
		op = subscription.OperationCancel
	}
	return s.transition(ctx, id, op,
		func(ctx context.Context, sub *subscription.Subscription, today types.Date) error {
			return s.applyCancel(sub, req, today)
		})
}

func (s *subscriptionService) ReactivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, subscription.OperationReactivate, s.applyReactivate)
}

// transitionFunc mutates a freshly read subscription in place. It must check
// the transition itself and must not persist.
type transitionFunc func(ctx context.Context, sub *subscription.Subscription, today types.Date) error

func (s *subscriptionService) transition(ctx context.Context, id string, op subscription.Operation, apply transitionFunc) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := sub.SubscriptionStatus
	if err := apply(ctx, sub, s.today()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("applied subscription transition",
		"subscription_id", sub.ID,
		"operation", op,
		"from_status", from,
		"to_status", sub.SubscriptionStatus,
		"end_date", sub.EndDate.String())

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// save validates and persists sub with a version check.
func (s *subscriptionService) save(ctx context.Context, sub *subscription.Subscription) error {
	sub.UpdatedAt = s.Clock.Now()
	if err := sub.Validate(); err != nil {
		return err
	}
	return s.SubRepo.Update(ctx, sub)
}

func (s *subscriptionService) cycleForPlan(ctx context.Context, planID string) (*billingcycle.BillingCycle, error) {
	p, err := s.PlanRepo.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.BillingCycleRepo.Get(ctx, p.BillingCycleID)
}

func (s *subscriptionService) applyActivate(_ context.Context, sub *subscription.Subscription, _ types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationActivate); err != nil {
		return err
	}
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	return nil
}

// applyRenew extends the current period by one cycle of the subscription's
// plan, anchored to the old end date.
func (s *subscriptionService) applyRenew(ctx context.Context, sub *subscription.Subscription, _ types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationRenew); err != nil {
		return err
	}

	cycle, err := s.cycleForPlan(ctx, sub.PlanID)
	if err != nil {
		return err
	}
	newEnd, err := cycle.NextEndDate(sub.EndDate)
	if err != nil {
		return err
	}

	sub.EndDate = newEnd
	sub.RenewalCount++
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	sub.IsTrial = false
	sub.TrialEndDate = nil
	return nil
}

func (s *subscriptionService) applyConvertTrial(ctx context.Context, sub *subscription.Subscription, today types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationConvertTrial); err != nil {
		return err
	}
	if !sub.IsTrial {
		return subscription.NewNotInTrialError(sub.ID, subscription.OperationConvertTrial)
	}

	cycle, err := s.cycleForPlan(ctx, sub.PlanID)
	if err != nil {
		return err
	}
	end, err := cycle.NextEndDate(today)
	if err != nil {
		return err
	}

	sub.StartDate = today
	sub.EndDate = end
	sub.IsTrial = false
	sub.TrialEndDate = nil
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	return nil
}

func (s *subscriptionService) applyChangePlan(ctx context.Context, sub *subscription.Subscription, req dto.ChangePlanRequest, today types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationChangePlan); err != nil {
		return err
	}
	if req.NewPlanID == sub.PlanID {
		return subscription.NewSamePlanError(sub.ID, sub.PlanID)
	}

	newPlan, err := s.PlanRepo.Get(ctx, req.NewPlanID)
	if err != nil {
		return err
	}
	if err := newPlan.Validate(); err != nil {
		return err
	}

	if req.Prorate {
		currentPlan, err := s.PlanRepo.Get(ctx, sub.PlanID)
		if err != nil {
			return err
		}
		credit := proration.CreditFor(s.calculator(), sub, currentPlan, today)
		sub.ProrationCredit = &credit
	}

	if req.Immediate {
		cycle, err := s.BillingCycleRepo.Get(ctx, newPlan.BillingCycleID)
		if err != nil {
			return err
		}
		end, err := cycle.NextEndDate(today)
		if err != nil {
			return err
		}
		sub.StartDate = today
		sub.EndDate = end
		// a new paid period replaces whatever trial was running
		sub.IsTrial = false
		sub.TrialEndDate = nil
	}

	sub.PreviousPlanID = lo.ToPtr(sub.PlanID)
	sub.PlanID = newPlan.ID
	sub.PlanChangedAt = lo.ToPtr(today)
	return nil
}

func (s *subscriptionService) applyCancel(sub *subscription.Subscription, req dto.CancelSubscriptionRequest, today types.Date) error {
	op := subscription.OperationCancelAtPeriodEnd
	if req.Immediate {
		op = subscription.OperationCancel
	}
	if err := subscription.CheckTransition(sub, op); err != nil {
		return err
	}

	sub.AutoRenew = false
	sub.CancelledAt = lo.ToPtr(today)
	sub.CancellationReason = req.Reason

	if req.Immediate {
		sub.SubscriptionStatus = types.SubscriptionStatusCancelled
		sub.EndDate = today
		// a pending subscription may start in the future
		if sub.StartDate.After(today) {
			sub.StartDate = today
		}
		sub.IsTrial = false
	}
	return nil
}

func (s *subscriptionService) applyReactivate(ctx context.Context, sub *subscription.Subscription, today types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationReactivate); err != nil {
		return err
	}

	cycle, err := s.cycleForPlan(ctx, sub.PlanID)
	if err != nil {
		return err
	}
	end, err := cycle.NextEndDate(today)
	if err != nil {
		return err
	}

	sub.StartDate = today
	sub.EndDate = end
	sub.CancelledAt = nil
	sub.CancellationReason = nil
	sub.AutoRenew = true
	sub.IsTrial = false
	sub.TrialEndDate = nil
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	return nil
}

// applyExpire ends a subscription whose period passed without a pending cancellation.
func (s *subscriptionService) applyExpire(_ context.Context, sub *subscription.Subscription, _ types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationExpire); err != nil {
		return err
	}
	if sub.CancelledAt != nil {
		return subscription.NewInvalidStateError(sub.ID, subscription.OperationExpire, sub.SubscriptionStatus)
	}
	sub.SubscriptionStatus = types.SubscriptionStatusExpired
	sub.IsTrial = false
	return nil
}

// applyExpireTrial ends a trial that was neither converted nor renewed.
// The trial end date is kept for reporting.
func (s *subscriptionService) applyExpireTrial(_ context.Context, sub *subscription.Subscription, _ types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationExpireTrial); err != nil {
		return err
	}
	if !sub.IsTrial {
		return subscription.NewNotInTrialError(sub.ID, subscription.OperationExpireTrial)
	}
	sub.SubscriptionStatus = types.SubscriptionStatusExpired
	sub.IsTrial = false
	return nil
}

// applyFinalizeCancellation turns a pending cancellation whose period passed into CANCELLED.
func (s *subscriptionService) applyFinalizeCancellation(_ context.Context, sub *subscription.Subscription, _ types.Date) error {
	if err := subscription.CheckTransition(sub, subscription.OperationFinalizeCancellation); err != nil {
		return err
	}
	if sub.CancelledAt == nil {
		return subscription.NewNoPendingCancellationError(sub.ID)
	}
	sub.SubscriptionStatus = types.SubscriptionStatusCancelled
	sub.AutoRenew = false
	sub.IsTrial = false
	return nil
}
