package temporal

import (
	"context"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/temporal/activities"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"github.com/flexprice/lifecycle/internal/temporal/workflows"
	"github.com/flexprice/lifecycle/internal/types"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/fx"
)

// Registrar is the part of a temporal worker used for registration
type Registrar interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivity(a interface{})
}

// RegisterWorkflowsAndActivities registers the sweep workflows under their
// schedule-facing names, plus the activities that back them.
func RegisterWorkflowsAndActivities(r Registrar, jobs service.LifecycleJobService, log *logger.Logger) {
	r.RegisterWorkflowWithOptions(workflows.RenewalSweepWorkflow, workflow.RegisterOptions{
		Name: types.TemporalRenewalSweepWorkflow.String(),
	})
	r.RegisterWorkflowWithOptions(workflows.TrialExpirationWorkflow, workflow.RegisterOptions{
		Name: types.TemporalTrialExpirationWorkflow.String(),
	})
	r.RegisterWorkflowWithOptions(workflows.ExpirationSweepWorkflow, workflow.RegisterOptions{
		Name: types.TemporalExpirationSweepWorkflow.String(),
	})

	r.RegisterActivity(activities.NewLifecycleActivities(jobs, log))

	log.Infow("registered temporal workflows and activities",
		"workflows", []string{
			types.TemporalRenewalSweepWorkflow.String(),
			types.TemporalTrialExpirationWorkflow.String(),
			types.TemporalExpirationSweepWorkflow.String(),
		})
}

// Worker manages the Temporal worker instance.
type Worker struct {
	worker worker.Worker
	log    *logger.Logger
}

// NewWorker creates a new Temporal worker and registers workflows and activities.
func NewWorker(client *TemporalClient, cfg *config.Configuration, jobs service.LifecycleJobService, log *logger.Logger) *Worker {
	w := worker.New(client.Client, cfg.Temporal.TaskQueue, models.DefaultWorkerOptions().ToSDKOptions())

	RegisterWorkflowsAndActivities(w, jobs, log)

	return &Worker{
		worker: w,
		log:    log,
	}
}

// Start starts the Temporal worker.
func (w *Worker) Start() error {
	w.log.Info("Starting temporal worker...")
	return w.worker.Start()
}

// Stop stops the Temporal worker.
func (w *Worker) Stop() {
	w.log.Info("Stopping temporal worker...")
	if w.worker != nil {
		w.worker.Stop()
	}
}

// RegisterWithLifecycle registers the worker with the fx lifecycle.
func (w *Worker) RegisterWithLifecycle(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start()
		},
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				w.Stop()
				close(done)
			}()

			select {
			case <-done:
				w.log.Info("Temporal worker stopped successfully")
			case <-ctx.Done():
				w.log.Error("Timeout while stopping temporal worker")
			}
			return nil
		},
	})
}
