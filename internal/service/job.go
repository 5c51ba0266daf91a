package service

import (
	"context"

	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/lock"
	"github.com/flexprice/lifecycle/internal/publisher"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// Scheduled job names. They double as run lock keys and workflow ids.
const (
	JobRenewals      = "renewals"
	JobExpiredTrials = "expired_trials"
	JobExpiration    = "expiration"
)

// LifecycleJobService is the trigger side of the sweeps. It makes sure only
// one run of a job is in flight, dispatches the results as lifecycle events
// and reports sweep-fatal errors. Cron handlers and temporal activities both
// go through it.
type LifecycleJobService interface {
	RunRenewals(ctx context.Context) (*dto.ProcessRenewalsResponse, error)
	RunTrialExpiration(ctx context.Context) (*dto.ExpireTrialsResponse, error)
	// RunExpiration uses the configured lookback window when lookbackDays is nil
	RunExpiration(ctx context.Context, lookbackDays *int) (*dto.ExpireSubscriptionsResponse, error)
}

type lifecycleJobService struct {
	ServiceParams
	renewals    RenewalService
	expirations ExpirationService
}

func NewLifecycleJobService(params ServiceParams) LifecycleJobService {
	return &lifecycleJobService{
		ServiceParams: params,
		renewals:      NewRenewalService(params),
		expirations:   NewExpirationService(params),
	}
}

func (s *lifecycleJobService) RunRenewals(ctx context.Context) (*dto.ProcessRenewalsResponse, error) {
	var resp *dto.ProcessRenewalsResponse
	err := s.withRunLock(ctx, JobRenewals, func(ctx context.Context) error {
		var err error
		resp, err = s.renewals.ProcessAutoRenewals(ctx)
		if err != nil {
			return err
		}
		s.publish(ctx, publisher.EventSubscriptionRenewed, resp.Succeeded())
		return nil
	})
	return resp, err
}

func (s *lifecycleJobService) RunTrialExpiration(ctx context.Context) (*dto.ExpireTrialsResponse, error) {
	var resp *dto.ExpireTrialsResponse
	err := s.withRunLock(ctx, JobExpiredTrials, func(ctx context.Context) error {
		var err error
		resp, err = s.expirations.HandleExpiredTrials(ctx)
		if err != nil {
			return err
		}
		s.publish(ctx, publisher.EventSubscriptionTrialExpired, resp.Expired)
		return nil
	})
	return resp, err
}

func (s *lifecycleJobService) RunExpiration(ctx context.Context, lookbackDays *int) (*dto.ExpireSubscriptionsResponse, error) {
	lookback := lo.FromPtrOr(lookbackDays, s.Config.Sweeper.LookbackDays)

	var resp *dto.ExpireSubscriptionsResponse
	err := s.withRunLock(ctx, JobExpiration, func(ctx context.Context) error {
		var err error
		resp, err = s.expirations.HandleExpiredSubscriptions(ctx, lookback)
		if err != nil {
			return err
		}
		s.publish(ctx, publisher.EventSubscriptionExpired, resp.Expired)
		s.publish(ctx, publisher.EventSubscriptionCancelled, resp.Cancelled)
		return nil
	})
	return resp, err
}

// withRunLock runs fn under the job's run lock with a fresh sweep run id.
// A held lock fails fast with ierr.ErrLockHeld.
func (s *lifecycleJobService) withRunLock(ctx context.Context, job string, fn func(ctx context.Context) error) error {
	if types.GetSweepRunID(ctx) == "" {
		ctx = types.SetSweepRunID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SWEEP_RUN))
	}
	log := s.Logger.WithContext(ctx)

	if s.Locker != nil {
		l, err := s.Locker.TryAcquire(ctx, lock.SweepKey(job), s.Config.Sweeper.LockTTL)
		if err != nil {
			if ierr.IsLockHeld(err) {
				log.Warnw("another run of the job is in progress, skipping", "job", job)
				return err
			}
			log.Errorw("failed to acquire job lock", "job", job, "error", err)
			s.Sentry.CaptureSweepFailure(ctx, job, err)
			return err
		}
		defer func() {
			// release even when the run was cancelled
			if err := l.Release(context.WithoutCancel(ctx)); err != nil {
				log.Errorw("failed to release job lock", "job", job, "error", err)
			}
		}()
	}

	span, ctx := s.Sentry.StartTransaction(ctx, "sweep."+job)
	if span != nil {
		defer span.Finish()
	}

	if err := fn(ctx); err != nil {
		log.Errorw("job failed", "job", job, "error", err)
		s.Sentry.CaptureSweepFailure(ctx, job, err)
		return err
	}
	return nil
}

// publish dispatches one event per subscription. Publishing is best effort:
// the transitions are committed and a lost event must not fail the job.
func (s *lifecycleJobService) publish(ctx context.Context, name publisher.EventName, subs []*subscription.Subscription) {
	if s.EventPublisher == nil || len(subs) == 0 {
		return
	}

	// the transitions are already committed, so a cancelled run still announces them
	ctx = context.WithoutCancel(ctx)
	runID := types.GetSweepRunID(ctx)
	failed := 0
	for _, sub := range subs {
		event := publisher.NewEvent(name, sub, runID, s.Clock.Now())
		if err := s.EventPublisher.Publish(ctx, event); err != nil {
			failed++
			s.Logger.Errorw("failed to publish lifecycle event",
				"event_name", name,
				"subscription_id", sub.ID,
				"error", err)
		}
	}

	if failed > 0 {
		s.Sentry.AddBreadcrumb("events", "lifecycle event publish failures", map[string]interface{}{
			"event_name": string(name),
			"failed":     failed,
			"run_id":     runID,
		})
	}

	s.Logger.Infow("published lifecycle events",
		"event_name", name,
		"total", len(subs),
		"failed", failed)
}
