package publisher

import (
	"time"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
)

// EventName identifies a lifecycle transition reported downstream
type EventName string

const (
	EventSubscriptionRenewed      EventName = "subscription.renewed"
	EventSubscriptionExpired      EventName = "subscription.expired"
	EventSubscriptionCancelled    EventName = "subscription.cancelled"
	EventSubscriptionTrialExpired EventName = "subscription.trial_expired"
)

// Event is the payload published for every subscription a sweep transitioned.
type Event struct {
	ID                 string                   `json:"id"`
	EventName          EventName                `json:"event_name"`
	SweepRunID         string                   `json:"sweep_run_id,omitempty"`
	SubscriptionID     string                   `json:"subscription_id"`
	SubscriberID       string                   `json:"subscriber_id"`
	PlanID             string                   `json:"plan_id"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	StartDate          types.Date               `json:"start_date"`
	EndDate            types.Date               `json:"end_date"`
	RenewalCount       int                      `json:"renewal_count"`
	Timestamp          time.Time                `json:"timestamp"`
}

// NewEvent snapshots sub into an event.
func NewEvent(name EventName, sub *subscription.Subscription, runID string, now time.Time) *Event {
	return &Event{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName:          name,
		SweepRunID:         runID,
		SubscriptionID:     sub.ID,
		SubscriberID:       sub.SubscriberID,
		PlanID:             sub.PlanID,
		SubscriptionStatus: sub.SubscriptionStatus,
		StartDate:          sub.StartDate,
		EndDate:            sub.EndDate,
		RenewalCount:       sub.RenewalCount,
		Timestamp:          now.UTC(),
	}
}
