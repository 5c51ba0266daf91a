package temporal

import (
	"context"
	"errors"

	"github.com/flexprice/lifecycle/internal/config"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"github.com/flexprice/lifecycle/internal/types"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
)

// SweepSchedule is one temporal schedule driving a sweep workflow
type SweepSchedule struct {
	Workflow types.TemporalWorkflowType
	Cron     string
	Args     []interface{}
}

// SweepSchedules lists the schedules derived from the configuration. An
// empty cron expression means the schedule should not exist.
func SweepSchedules(cfg *config.Configuration) []SweepSchedule {
	tc := cfg.Temporal
	return []SweepSchedule{
		{Workflow: types.TemporalRenewalSweepWorkflow, Cron: tc.RenewalSchedule},
		{Workflow: types.TemporalTrialExpirationWorkflow, Cron: tc.TrialExpirationSchedule},
		{
			Workflow: types.TemporalExpirationSweepWorkflow,
			Cron:     tc.ExpirationSchedule,
			Args:     []interface{}{models.ExpirationSweepWorkflowInput{}},
		},
	}
}

// ScheduleManager keeps the temporal schedules in line with the configuration
type ScheduleManager struct {
	schedules client.ScheduleClient
	cfg       *config.Configuration
	log       *logger.Logger
}

func NewScheduleManager(c *TemporalClient, cfg *config.Configuration, log *logger.Logger) *ScheduleManager {
	return &ScheduleManager{
		schedules: c.Client.ScheduleClient(),
		cfg:       cfg,
		log:       log,
	}
}

// Sync creates or updates every configured schedule and deletes the ones
// whose cron expression is empty. Overlapping runs are skipped, so a slow
// sweep never queues a second one behind it.
func (m *ScheduleManager) Sync(ctx context.Context) error {
	for _, s := range SweepSchedules(m.cfg) {
		if err := m.sync(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *ScheduleManager) sync(ctx context.Context, s SweepSchedule) error {
	id := s.Workflow.ScheduleID()
	if s.Cron == "" {
		return m.delete(ctx, id)
	}

	spec := client.ScheduleSpec{CronExpressions: []string{s.Cron}}
	action := &client.ScheduleWorkflowAction{
		ID:        id,
		Workflow:  s.Workflow.String(),
		Args:      s.Args,
		TaskQueue: m.cfg.Temporal.TaskQueue,
	}

	_, err := m.schedules.Create(ctx, client.ScheduleOptions{
		ID:      id,
		Spec:    spec,
		Action:  action,
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
	})
	if err == nil {
		m.log.Infow("temporal schedule created", "schedule_id", id, "cron", s.Cron)
		return nil
	}
	if !isAlreadyExists(err) {
		m.log.Errorw("failed to create temporal schedule", "schedule_id", id, "error", err)
		return ierr.WithError(err).
			WithHintf("Failed to create temporal schedule %s", id).
			Mark(ierr.ErrSystem)
	}

	handle := m.schedules.GetHandle(ctx, id)
	err = handle.Update(ctx, client.ScheduleUpdateOptions{
		DoUpdate: func(input client.ScheduleUpdateInput) (*client.ScheduleUpdate, error) {
			schedule := input.Description.Schedule
			schedule.Spec = &spec
			schedule.Action = action
			if schedule.Policy == nil {
				schedule.Policy = &client.SchedulePolicies{}
			}
			schedule.Policy.Overlap = enumspb.SCHEDULE_OVERLAP_POLICY_SKIP
			return &client.ScheduleUpdate{Schedule: &schedule}, nil
		},
	})
	if err != nil {
		m.log.Errorw("failed to update temporal schedule", "schedule_id", id, "error", err)
		return ierr.WithError(err).
			WithHintf("Failed to update temporal schedule %s", id).
			Mark(ierr.ErrSystem)
	}

	m.log.Infow("temporal schedule updated", "schedule_id", id, "cron", s.Cron)
	return nil
}

func (m *ScheduleManager) delete(ctx context.Context, id string) error {
	err := m.schedules.GetHandle(ctx, id).Delete(ctx)
	if err == nil {
		m.log.Infow("temporal schedule deleted", "schedule_id", id)
		return nil
	}
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return nil
	}
	return ierr.WithError(err).
		WithHintf("Failed to delete temporal schedule %s", id).
		Mark(ierr.ErrSystem)
}

func isAlreadyExists(err error) bool {
	var alreadyExists *serviceerror.AlreadyExists
	return errors.Is(err, temporal.ErrScheduleAlreadyRunning) || errors.As(err, &alreadyExists)
}
