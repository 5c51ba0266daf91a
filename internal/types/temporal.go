package types

import (
	"fmt"
	"strings"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/samber/lo"
)

// TemporalWorkflowType names a registered sweep workflow
type TemporalWorkflowType string

const (
	TemporalRenewalSweepWorkflow    TemporalWorkflowType = "RenewalSweepWorkflow"
	TemporalTrialExpirationWorkflow TemporalWorkflowType = "TrialExpirationWorkflow"
	TemporalExpirationSweepWorkflow TemporalWorkflowType = "ExpirationSweepWorkflow"
)

func (w TemporalWorkflowType) String() string {
	return string(w)
}

func (w TemporalWorkflowType) Validate() error {
	allowedWorkflows := []TemporalWorkflowType{
		TemporalRenewalSweepWorkflow,
		TemporalTrialExpirationWorkflow,
		TemporalExpirationSweepWorkflow,
	}
	if lo.Contains(allowedWorkflows, w) {
		return nil
	}
	return ierr.NewError("invalid workflow type").
		WithHint(fmt.Sprintf("Workflow type must be one of: %s", strings.Join(lo.Map(allowedWorkflows, func(w TemporalWorkflowType, _ int) string { return string(w) }), ", "))).
		Mark(ierr.ErrValidation)
}

// ScheduleID is the id of the temporal schedule that triggers the workflow
func (w TemporalWorkflowType) ScheduleID() string {
	return "lifecycle-" + strings.ToLower(strings.TrimSuffix(string(w), "Workflow"))
}
