package activities

import (
	"context"

	"github.com/flexprice/lifecycle/internal/api/dto"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"go.temporal.io/sdk/temporal"
)

// LifecycleActivities runs the scheduled sweeps on a temporal worker. Each
// activity is one run of a lifecycle job, guarded by the job's run lock.
type LifecycleActivities struct {
	jobs   service.LifecycleJobService
	logger *logger.Logger
}

func NewLifecycleActivities(jobs service.LifecycleJobService, logger *logger.Logger) *LifecycleActivities {
	return &LifecycleActivities{jobs: jobs, logger: logger}
}

func (a *LifecycleActivities) RunRenewals(ctx context.Context) (*models.SweepWorkflowResult, error) {
	resp, err := a.jobs.RunRenewals(ctx)
	if err != nil {
		return a.handleError(ctx, service.JobRenewals, err)
	}
	return &models.SweepWorkflowResult{
		Passes: []*models.SweepResult{models.NewSweepResult(&resp.SweepSummary)},
	}, nil
}

func (a *LifecycleActivities) RunTrialExpiration(ctx context.Context) (*models.SweepWorkflowResult, error) {
	resp, err := a.jobs.RunTrialExpiration(ctx)
	if err != nil {
		return a.handleError(ctx, service.JobExpiredTrials, err)
	}
	return &models.SweepWorkflowResult{
		Passes: []*models.SweepResult{models.NewSweepResult(&resp.SweepSummary)},
	}, nil
}

func (a *LifecycleActivities) RunExpiration(ctx context.Context, input models.ExpirationSweepWorkflowInput) (*models.SweepWorkflowResult, error) {
	resp, err := a.jobs.RunExpiration(ctx, input.LookbackDays)
	if err != nil {
		return a.handleError(ctx, service.JobExpiration, err)
	}
	return expirationResult(resp), nil
}

func expirationResult(resp *dto.ExpireSubscriptionsResponse) *models.SweepWorkflowResult {
	result := &models.SweepWorkflowResult{
		RecentlyExpired: len(resp.RecentlyExpired),
		LookbackDays:    resp.LookbackDays,
	}
	for _, pass := range []*dto.SweepSummary{resp.ExpiredPass, resp.CancelledPass} {
		if pass != nil {
			result.Passes = append(result.Passes, models.NewSweepResult(pass))
		}
	}
	return result
}

// handleError turns a held run lock into a no-op result and marks errors
// that a retry cannot fix as non-retryable.
func (a *LifecycleActivities) handleError(ctx context.Context, job string, err error) (*models.SweepWorkflowResult, error) {
	log := a.logger.WithContext(ctx)
	if ierr.IsLockHeld(err) {
		log.Infow("lifecycle job already running, skipping", "job", job)
		return &models.SweepWorkflowResult{LockHeld: true}, nil
	}

	log.Errorw("lifecycle job failed", "job", job, "error", err)
	switch {
	case ierr.IsValidation(err):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), models.ErrTypeValidation, err)
	case ierr.IsPermanent(err):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), models.ErrTypePermanent, err)
	default:
		return nil, err
	}
}
