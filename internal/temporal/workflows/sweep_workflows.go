package workflows

import (
	"github.com/flexprice/lifecycle/internal/temporal/activities"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/workflow"
)

// activity method references; temporal only uses them for their names
var lifecycleActivities *activities.LifecycleActivities

// RenewalSweepWorkflow runs one auto renewal pass.
func RenewalSweepWorkflow(ctx workflow.Context) (*models.SweepWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting renewal sweep workflow")

	ctx = workflow.WithActivityOptions(ctx, models.SweepActivityOptions())

	var result models.SweepWorkflowResult
	if err := workflow.ExecuteActivity(ctx, lifecycleActivities.RunRenewals).Get(ctx, &result); err != nil {
		logger.Error("Renewal sweep failed", "error", err)
		return nil, err
	}

	logResult(logger, "renewal sweep", &result)
	return &result, nil
}

// TrialExpirationWorkflow moves trials past their trial end date to EXPIRED.
func TrialExpirationWorkflow(ctx workflow.Context) (*models.SweepWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting trial expiration workflow")

	ctx = workflow.WithActivityOptions(ctx, models.SweepActivityOptions())

	var result models.SweepWorkflowResult
	if err := workflow.ExecuteActivity(ctx, lifecycleActivities.RunTrialExpiration).Get(ctx, &result); err != nil {
		logger.Error("Trial expiration failed", "error", err)
		return nil, err
	}

	logResult(logger, "trial expiration", &result)
	return &result, nil
}

// ExpirationSweepWorkflow runs the expiry and pending cancellation passes.
func ExpirationSweepWorkflow(ctx workflow.Context, input models.ExpirationSweepWorkflowInput) (*models.SweepWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting expiration sweep workflow", "lookback_days", input.LookbackDays)

	ctx = workflow.WithActivityOptions(ctx, models.SweepActivityOptions())

	var result models.SweepWorkflowResult
	if err := workflow.ExecuteActivity(ctx, lifecycleActivities.RunExpiration, input).Get(ctx, &result); err != nil {
		logger.Error("Expiration sweep failed", "error", err)
		return nil, err
	}

	logResult(logger, "expiration sweep", &result)
	return &result, nil
}

func logResult(logger log.Logger, name string, result *models.SweepWorkflowResult) {
	if result.LockHeld {
		logger.Info("Skipped, another run holds the lock", "sweep", name)
		return
	}
	for _, pass := range result.Passes {
		logger.Info("Sweep pass completed",
			"sweep", pass.Sweep,
			"run_id", pass.RunID,
			"selected", pass.TotalSelected,
			"succeeded", pass.TotalSuccess,
			"failed", pass.TotalFailed,
			"skipped", pass.TotalSkipped)
	}
}
