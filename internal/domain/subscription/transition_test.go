package subscription

import (
	"testing"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCanApply(t *testing.T) {
	pending := types.SubscriptionStatusPending
	active := types.SubscriptionStatusActive
	expired := types.SubscriptionStatusExpired
	cancelled := types.SubscriptionStatusCancelled

	tests := []struct {
		op     Operation
		status types.SubscriptionStatus
		want   bool
	}{
		{OperationActivate, pending, true},
		{OperationActivate, active, false},
		{OperationRenew, active, true},
		{OperationRenew, pending, true},
		{OperationRenew, cancelled, false},
		{OperationRenew, expired, false},
		{OperationChangePlan, active, true},
		{OperationChangePlan, pending, false},
		{OperationCancel, pending, true},
		{OperationCancel, cancelled, false},
		{OperationCancelAtPeriodEnd, pending, false},
		{OperationReactivate, cancelled, true},
		{OperationReactivate, active, false},
		{OperationReactivate, expired, false},
		{OperationExpire, active, true},
		{OperationFinalizeCancellation, cancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.op)+"_from_"+string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, CanApply(tt.op, tt.status))
		})
	}
}

func TestExpiredIsTerminal(t *testing.T) {
	for op := range allowedFrom {
		assert.False(t, CanApply(op, types.SubscriptionStatusExpired), "operation %s", op)
	}
}

func TestCheckTransition(t *testing.T) {
	s := &Subscription{ID: "subs_1", SubscriptionStatus: types.SubscriptionStatusCancelled}

	err := CheckTransition(s, OperationRenew)
	assert.True(t, ierr.IsInvalidState(err))
	assert.Equal(t, 409, ierr.HTTPStatusFromErr(err))

	assert.NoError(t, CheckTransition(s, OperationReactivate))
}
