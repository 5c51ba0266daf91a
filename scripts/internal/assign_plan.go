package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// AssignPlanToSubscribers creates a subscription on PLAN_ID for every id in the
// comma separated SUBSCRIBER_IDS that does not already hold a live one for it.
func AssignPlanToSubscribers() error {
	planID := os.Getenv("PLAN_ID")
	subscriberIDs := lo.Compact(lo.Map(strings.Split(os.Getenv("SUBSCRIBER_IDS"), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))

	if planID == "" || len(subscriberIDs) == 0 {
		return fmt.Errorf("plan_id and subscriber_ids are required")
	}
	startTrial := os.Getenv("START_TRIAL") == "true"

	env, err := newScriptEnv()
	if err != nil {
		return fmt.Errorf("failed to initialize script: %w", err)
	}
	defer env.close()

	ctx := context.Background()

	existing, err := env.subscriptionSvc.ListSubscriptions(ctx, &types.SubscriptionFilter{
		PlanID: planID,
		SubscriptionStatus: []types.SubscriptionStatus{
			types.SubscriptionStatusPending,
			types.SubscriptionStatusActive,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to list existing subscriptions: %w", err)
	}

	subscribed := lo.SliceToMap(existing.Items, func(s *dto.SubscriptionResponse) (string, bool) {
		return s.SubscriberID, true
	})

	log.Printf("Assigning plan %s to %d subscribers (%d already subscribed)\n", planID, len(subscriberIDs), len(subscribed))

	var created, skipped, failed int
	for _, subscriberID := range subscriberIDs {
		if subscribed[subscriberID] {
			skipped++
			continue
		}

		time.Sleep(100 * time.Millisecond) // Rate limiting

		sub, err := env.subscriptionSvc.CreateSubscription(ctx, dto.CreateSubscriptionRequest{
			SubscriberID: subscriberID,
			PlanID:       planID,
			StartTrial:   startTrial,
			Metadata:     types.Metadata{"source": "assign-plan"},
		})
		if err != nil {
			failed++
			env.log.Errorw("failed to create subscription", "subscriber_id", subscriberID, "plan_id", planID, "error", err)
			continue
		}
		created++
		log.Printf("Created subscription %s for %s (%s)\n", sub.ID, subscriberID, sub.SubscriptionStatus)
	}

	log.Printf("Plan assignment finished: created=%d skipped=%d failed=%d\n", created, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d subscriptions failed to create", failed)
	}
	return nil
}
