package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/flexprice/lifecycle/internal/api/dto"
	ierr "github.com/flexprice/lifecycle/internal/errors"
)

// ImportLegacySubscriptions loads complete subscription records from the JSON
// array at SUBSCRIPTIONS_FILE and persists each through the legacy import path.
// Records that already exist are skipped so the file can be replayed.
func ImportLegacySubscriptions() error {
	path := os.Getenv("SUBSCRIPTIONS_FILE")
	if path == "" {
		return fmt.Errorf("subscriptions file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var reqs []dto.ImportLegacySubscriptionRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	env, err := newScriptEnv()
	if err != nil {
		return fmt.Errorf("failed to initialize script: %w", err)
	}
	defer env.close()

	log.Printf("Importing %d subscriptions from %s\n", len(reqs), path)

	ctx := context.Background()
	var imported, skipped, failed int
	for i, req := range reqs {
		sub, err := env.subscriptionSvc.ImportLegacySubscription(ctx, req)
		switch {
		case err == nil:
			imported++
			env.log.Debugw("imported subscription", "subscription_id", sub.ID)
		case ierr.IsAlreadyExists(err):
			skipped++
		default:
			failed++
			env.log.Errorw("failed to import subscription",
				"index", i,
				"subscription_id", req.ID,
				"subscriber_id", req.SubscriberID,
				"error", err)
		}
	}

	log.Printf("Import finished: imported=%d skipped=%d failed=%d\n", imported, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d subscriptions failed to import", failed)
	}
	return nil
}
