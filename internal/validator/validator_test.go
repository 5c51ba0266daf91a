package validator

import (
	"testing"

	"github.com/cockroachdb/errors"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/stretchr/testify/assert"
)

type cancelRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
	Reason         string `json:"reason" validate:"max=5"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&cancelRequest{SubscriptionID: "subs_1"}))

	err := ValidateRequest(&cancelRequest{Reason: "too long reason"})
	assert.True(t, ierr.IsValidation(err))
	assert.Contains(t, errors.GetAllHints(err), "Request validation failed")
}
