package plan

import ierr "github.com/flexprice/lifecycle/internal/errors"

func NewNotFoundError(id string) error {
	return ierr.NewError("plan not found").
		WithHintf("Plan with ID %s was not found", id).
		WithReportableDetails(map[string]any{
			"plan_id": id,
		}).
		Mark(ierr.ErrNotFound)
}
