package billingcycle

import ierr "github.com/flexprice/lifecycle/internal/errors"

func NewNotFoundError(id string) error {
	return ierr.NewError("billing cycle not found").
		WithHintf("Billing cycle with ID %s was not found", id).
		WithReportableDetails(map[string]any{
			"billing_cycle_id": id,
		}).
		Mark(ierr.ErrNotFound)
}
