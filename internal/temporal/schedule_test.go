package temporal

import (
	"context"
	"testing"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
)

// fakeScheduleClient keeps schedules in a map. Methods the manager does not
// call are left to the embedded nil interface.
type fakeScheduleClient struct {
	client.ScheduleClient
	schedules map[string]*client.Schedule
	deleted   []string
}

func newFakeScheduleClient() *fakeScheduleClient {
	return &fakeScheduleClient{schedules: make(map[string]*client.Schedule)}
}

func (f *fakeScheduleClient) Create(_ context.Context, options client.ScheduleOptions) (client.ScheduleHandle, error) {
	if _, ok := f.schedules[options.ID]; ok {
		return nil, temporal.ErrScheduleAlreadyRunning
	}
	spec := options.Spec
	f.schedules[options.ID] = &client.Schedule{
		Action: options.Action,
		Spec:   &spec,
		Policy: &client.SchedulePolicies{Overlap: options.Overlap},
	}
	return &fakeScheduleHandle{id: options.ID, client: f}, nil
}

func (f *fakeScheduleClient) GetHandle(_ context.Context, id string) client.ScheduleHandle {
	return &fakeScheduleHandle{id: id, client: f}
}

type fakeScheduleHandle struct {
	client.ScheduleHandle
	id     string
	client *fakeScheduleClient
}

func (h *fakeScheduleHandle) GetID() string {
	return h.id
}

func (h *fakeScheduleHandle) Delete(_ context.Context) error {
	if _, ok := h.client.schedules[h.id]; !ok {
		return serviceerror.NewNotFound("schedule not found")
	}
	delete(h.client.schedules, h.id)
	h.client.deleted = append(h.client.deleted, h.id)
	return nil
}

func (h *fakeScheduleHandle) Update(_ context.Context, options client.ScheduleUpdateOptions) error {
	current, ok := h.client.schedules[h.id]
	if !ok {
		return serviceerror.NewNotFound("schedule not found")
	}
	update, err := options.DoUpdate(client.ScheduleUpdateInput{
		Description: client.ScheduleDescription{Schedule: *current},
	})
	if err != nil {
		return err
	}
	h.client.schedules[h.id] = update.Schedule
	return nil
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		Temporal: config.TemporalConfig{
			TaskQueue:               "subscription-lifecycle",
			RenewalSchedule:         "0 1 * * *",
			TrialExpirationSchedule: "15 1 * * *",
			ExpirationSchedule:      "30 1 * * *",
		},
	}
}

func TestScheduleManagerCreatesSchedules(t *testing.T) {
	fake := newFakeScheduleClient()
	m := &ScheduleManager{schedules: fake, cfg: testConfig(), log: logger.NewNoopLogger()}

	require.NoError(t, m.Sync(context.Background()))
	require.Len(t, fake.schedules, 3)

	renewal := fake.schedules[types.TemporalRenewalSweepWorkflow.ScheduleID()]
	require.NotNil(t, renewal)
	assert.Equal(t, []string{"0 1 * * *"}, renewal.Spec.CronExpressions)
	assert.Equal(t, enumspb.SCHEDULE_OVERLAP_POLICY_SKIP, renewal.Policy.Overlap)

	action, ok := renewal.Action.(*client.ScheduleWorkflowAction)
	require.True(t, ok)
	assert.Equal(t, "RenewalSweepWorkflow", action.Workflow)
	assert.Equal(t, "subscription-lifecycle", action.TaskQueue)

	expiration := fake.schedules["lifecycle-expirationsweep"]
	require.NotNil(t, expiration)
	action = expiration.Action.(*client.ScheduleWorkflowAction)
	assert.Equal(t, []interface{}{models.ExpirationSweepWorkflowInput{}}, action.Args)
}

func TestScheduleManagerUpdatesExistingSchedules(t *testing.T) {
	fake := newFakeScheduleClient()
	cfg := testConfig()
	m := &ScheduleManager{schedules: fake, cfg: cfg, log: logger.NewNoopLogger()}
	require.NoError(t, m.Sync(context.Background()))

	fake.schedules["lifecycle-renewalsweep"].Policy.Overlap = enumspb.SCHEDULE_OVERLAP_POLICY_ALLOW_ALL
	cfg.Temporal.RenewalSchedule = "0 3 * * *"
	require.NoError(t, m.Sync(context.Background()))

	renewal := fake.schedules["lifecycle-renewalsweep"]
	assert.Equal(t, []string{"0 3 * * *"}, renewal.Spec.CronExpressions)
	assert.Equal(t, enumspb.SCHEDULE_OVERLAP_POLICY_SKIP, renewal.Policy.Overlap)
}

func TestScheduleManagerDeletesDisabledSchedules(t *testing.T) {
	fake := newFakeScheduleClient()
	cfg := testConfig()
	m := &ScheduleManager{schedules: fake, cfg: cfg, log: logger.NewNoopLogger()}
	require.NoError(t, m.Sync(context.Background()))

	cfg.Temporal.TrialExpirationSchedule = ""
	require.NoError(t, m.Sync(context.Background()))
	assert.Equal(t, []string{"lifecycle-trialexpiration"}, fake.deleted)
	assert.Len(t, fake.schedules, 2)

	// deleting a schedule that is already gone is not an error
	require.NoError(t, m.Sync(context.Background()))
	assert.Len(t, fake.deleted, 1)
}
