package dto

import (
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
)

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// UpcomingSubscriptionsResponse lists subscriptions reaching a boundary
// within the next Days days, today included.
type UpcomingSubscriptionsResponse struct {
	Today         types.Date                   `json:"today"`
	Days          int                          `json:"days"`
	Total         int                          `json:"total"`
	Subscriptions []*subscription.Subscription `json:"subscriptions"`
}

func NewUpcomingSubscriptionsResponse(today types.Date, days int, subs []*subscription.Subscription) *UpcomingSubscriptionsResponse {
	return &UpcomingSubscriptionsResponse{
		Today:         today,
		Days:          days,
		Total:         len(subs),
		Subscriptions: subs,
	}
}
