package subscription

import (
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// Matches reports whether s satisfies every predicate of f. Paging fields
// (AfterID, Limit) are ignored. A nil filter matches everything.
func Matches(s *Subscription, f *types.SubscriptionFilter) bool {
	if s == nil {
		return false
	}
	if f == nil {
		return true
	}
	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, s.ID) {
		return false
	}
	if f.SubscriberID != "" && s.SubscriberID != f.SubscriberID {
		return false
	}
	if f.PlanID != "" && s.PlanID != f.PlanID {
		return false
	}
	if len(f.SubscriptionStatus) > 0 && !lo.Contains(f.SubscriptionStatus, s.SubscriptionStatus) {
		return false
	}
	if f.AutoRenew != nil && s.AutoRenew != *f.AutoRenew {
		return false
	}
	if f.IsTrial != nil && s.IsTrial != *f.IsTrial {
		return false
	}
	if f.HasCancelledAt != nil && (s.CancelledAt != nil) != *f.HasCancelledAt {
		return false
	}
	if f.EndDate != nil && !f.EndDate.Contains(s.EndDate) {
		return false
	}
	if f.TrialEndDate != nil {
		if s.TrialEndDate == nil || !f.TrialEndDate.Contains(*s.TrialEndDate) {
			return false
		}
	}
	return true
}
