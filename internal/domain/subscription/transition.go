package subscription

import (
	"strings"

	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// Operation is a lifecycle action applied to a subscription.
type Operation string

const (
	OperationActivate             Operation = "activate"
	OperationRenew                Operation = "renew"
	OperationConvertTrial         Operation = "convert_trial"
	OperationChangePlan           Operation = "change_plan"
	OperationCancel               Operation = "cancel"
	OperationCancelAtPeriodEnd    Operation = "cancel_at_period_end"
	OperationReactivate           Operation = "reactivate"
	OperationExpire               Operation = "expire"
	OperationExpireTrial          Operation = "expire_trial"
	OperationFinalizeCancellation Operation = "finalize_cancellation"
)

// Verb renders the operation for user facing messages.
func (o Operation) Verb() string {
	return strings.ReplaceAll(string(o), "_", " ")
}

// allowedFrom lists the statuses each operation may start from.
// EXPIRED appears nowhere: it is terminal.
var allowedFrom = map[Operation][]types.SubscriptionStatus{
	OperationActivate:             {types.SubscriptionStatusPending},
	OperationRenew:                {types.SubscriptionStatusPending, types.SubscriptionStatusActive},
	OperationConvertTrial:         {types.SubscriptionStatusActive},
	OperationChangePlan:           {types.SubscriptionStatusActive},
	OperationCancel:               {types.SubscriptionStatusPending, types.SubscriptionStatusActive},
	// a PENDING subscription has no running period, cancel it immediately
	OperationCancelAtPeriodEnd:    {types.SubscriptionStatusActive},
	OperationReactivate:           {types.SubscriptionStatusCancelled},
	OperationExpire:               {types.SubscriptionStatusActive},
	OperationExpireTrial:          {types.SubscriptionStatusActive},
	OperationFinalizeCancellation: {types.SubscriptionStatusActive},
}

// AllowedStatuses returns the statuses op may be applied from.
func AllowedStatuses(op Operation) []types.SubscriptionStatus {
	return allowedFrom[op]
}

// CanApply reports whether op is allowed from status.
func CanApply(op Operation, status types.SubscriptionStatus) bool {
	return lo.Contains(allowedFrom[op], status)
}

// CheckTransition returns an invalid state error unless op may be applied to s.
func CheckTransition(s *Subscription, op Operation) error {
	if !CanApply(op, s.SubscriptionStatus) {
		return NewInvalidStateError(s.ID, op, s.SubscriptionStatus)
	}
	return nil
}
