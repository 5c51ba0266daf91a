package postgres

import (
	"strings"

	"github.com/flexprice/lifecycle/internal/types"
	"github.com/jmoiron/sqlx"
)

const subscriptionColumns = `id, subscriber_id, plan_id, previous_plan_id, invoice_id,
	subscription_status, start_date, end_date, is_trial, trial_end_date,
	auto_renew, renewal_count, cancelled_at, cancellation_reason,
	plan_changed_at, proration_credit, metadata, version, created_at, updated_at`

// whereBuilder collects AND-ed conditions written with ? placeholders
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (b *whereBuilder) add(cond string, args ...interface{}) {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
}

func (b *whereBuilder) addDateRange(column string, r *types.DateRangeFilter) {
	if r == nil {
		return
	}
	// a NULL column never satisfies the comparison, so an unset date never matches
	if r.From == nil && r.To == nil {
		b.add(column + " IS NOT NULL")
		return
	}
	if r.From != nil {
		b.add(column+" >= ?", *r.From)
	}
	if r.To != nil {
		b.add(column+" <= ?", *r.To)
	}
}

// buildSubscriptionQuery renders filter as a postgres query ordered by id.
// It selects the same set as subscription.Matches.
func buildSubscriptionQuery(filter *types.SubscriptionFilter) (string, []interface{}, error) {
	if filter == nil {
		filter = &types.SubscriptionFilter{}
	}

	b := &whereBuilder{}
	if len(filter.SubscriptionIDs) > 0 {
		b.add("id IN (?)", filter.SubscriptionIDs)
	}
	if filter.SubscriberID != "" {
		b.add("subscriber_id = ?", filter.SubscriberID)
	}
	if filter.PlanID != "" {
		b.add("plan_id = ?", filter.PlanID)
	}
	if len(filter.SubscriptionStatus) > 0 {
		b.add("subscription_status IN (?)", filter.SubscriptionStatus)
	}
	if filter.AutoRenew != nil {
		b.add("auto_renew = ?", *filter.AutoRenew)
	}
	if filter.IsTrial != nil {
		b.add("is_trial = ?", *filter.IsTrial)
	}
	if filter.HasCancelledAt != nil {
		if *filter.HasCancelledAt {
			b.add("cancelled_at IS NOT NULL")
		} else {
			b.add("cancelled_at IS NULL")
		}
	}
	b.addDateRange("end_date", filter.EndDate)
	b.addDateRange("trial_end_date", filter.TrialEndDate)
	if filter.AfterID != "" {
		b.add("id > ?", filter.AfterID)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(subscriptionColumns)
	sb.WriteString(" FROM subscriptions")
	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}
	sb.WriteString(" ORDER BY id")

	args := b.args
	if !filter.IsUnlimited() {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	// expand the IN lists, then switch to $n placeholders
	query, args, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}
