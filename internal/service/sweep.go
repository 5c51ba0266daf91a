package service

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Sweep pass names as reported in summaries and logs
const (
	SweepRenewals             = "renewals"
	SweepExpiredTrials        = "expired_trials"
	SweepExpiredSubscriptions = "expired_subscriptions"
	SweepPendingCancellations = "pending_cancellations"
)

const defaultSweepBatchSize = 100

// sweepPass is one set based transition applied to every subscription
// matching filter.
type sweepPass struct {
	name   string
	filter *types.SubscriptionFilter
	apply  transitionFunc
}

// sweeper runs sweep passes. The due set is snapshotted first and every item
// is re-read and re-matched right before it is written, so an item another
// writer already moved is skipped instead of transitioned twice.
type sweeper struct {
	ServiceParams
	subs *subscriptionService
}

func newSweeper(params ServiceParams, subs *subscriptionService) *sweeper {
	return &sweeper{ServiceParams: params, subs: subs}
}

// run executes pass against the state as of today. It only fails when the due
// set cannot be read. Item failures are reported in the summary. A run whose
// ctx is cancelled returns a Cancelled summary of whatever it committed, with
// no error, so callers can still act on those items.
func (s *sweeper) run(ctx context.Context, pass sweepPass, today types.Date) (*dto.SweepSummary, error) {
	runID := types.GetSweepRunID(ctx)
	if runID == "" {
		runID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SWEEP_RUN)
		ctx = types.SetSweepRunID(ctx, runID)
	}
	log := s.Logger.WithContext(ctx)

	summary := &dto.SweepSummary{
		Sweep:     pass.name,
		RunID:     runID,
		Today:     today,
		StartedAt: s.Clock.Now(),
		Items:     make([]*dto.SweepItemResult, 0),
	}

	log.Infow("starting sweep",
		"sweep", pass.name,
		"today", today.String())

	due, err := s.selectDue(ctx, pass.filter)
	if err != nil && ctx.Err() != nil {
		log.Warnw("sweep cancelled before selection",
			"sweep", pass.name,
			"error", err)
		summary.Cancelled = true
		summary.FinishedAt = s.Clock.Now()
		return summary, nil
	}
	if err != nil {
		log.Errorw("failed to select due subscriptions",
			"sweep", pass.name,
			"error", err)
		return nil, ierr.WithError(err).
			WithHintf("Failed to select subscriptions for the %s sweep", pass.name).
			WithReportableDetails(map[string]any{
				"sweep":  pass.name,
				"run_id": runID,
			}).
			Mark(ierr.ErrDatabase)
	}
	summary.TotalSelected = len(due)

	log.Infow("selected due subscriptions",
		"sweep", pass.name,
		"count", len(due))

	results := make([]*dto.SweepItemResult, len(due))
	p := pool.New().WithMaxGoroutines(s.concurrency())
	for i, sub := range due {
		if ctx.Err() != nil {
			break
		}
		i, sub := i, sub
		p.Go(func() {
			// the run may have been stopped while this item waited for a worker
			if ctx.Err() != nil {
				return
			}
			results[i] = s.processItemSafe(ctx, pass, sub.ID, today)
		})
	}
	p.Wait()

	for i, item := range results {
		if item == nil {
			item = &dto.SweepItemResult{
				SubscriptionID: due[i].ID,
				Outcome:        dto.SweepOutcomeNotProcessed,
			}
		}
		switch item.Outcome {
		case dto.SweepOutcomeSuccess:
			summary.TotalSuccess++
		case dto.SweepOutcomeFailure:
			summary.TotalFailed++
		case dto.SweepOutcomeSkipped:
			summary.TotalSkipped++
		case dto.SweepOutcomeNotProcessed:
			summary.TotalUnprocessed++
		}
		summary.Items = append(summary.Items, item)
	}
	summary.Cancelled = summary.TotalUnprocessed > 0 || ctx.Err() != nil
	summary.FinishedAt = s.Clock.Now()

	log.Infow("completed sweep",
		"sweep", pass.name,
		"total_selected", summary.TotalSelected,
		"total_success", summary.TotalSuccess,
		"total_failed", summary.TotalFailed,
		"total_skipped", summary.TotalSkipped,
		"total_unprocessed", summary.TotalUnprocessed,
		"cancelled", summary.Cancelled)

	return summary, nil
}

// selectDue pages through the due set by id.
func (s *sweeper) selectDue(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	page := *filter
	page.Limit = s.Config.Sweeper.BatchSize
	if page.Limit <= 0 {
		page.Limit = defaultSweepBatchSize
	}

	due := make([]*subscription.Subscription, 0)
	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := s.SubRepo.List(ctx, page.WithAfterID(afterID))
		if err != nil {
			return nil, err
		}
		due = append(due, batch...)

		if len(batch) < page.Limit {
			break
		}
		afterID = batch[len(batch)-1].ID
	}
	return due, nil
}

// processItemSafe turns a panic in one item into a failure of that item.
func (s *sweeper) processItemSafe(ctx context.Context, pass sweepPass, id string, today types.Date) *dto.SweepItemResult {
	var result *dto.SweepItemResult
	var pc panics.Catcher
	pc.Try(func() {
		result = s.processItem(ctx, pass, id, today)
	})
	if r := pc.Recovered(); r != nil {
		s.Logger.Errorw("panic while processing subscription in sweep",
			"sweep", pass.name,
			"subscription_id", id,
			"error", r.AsError())
		return &dto.SweepItemResult{
			SubscriptionID: id,
			Outcome:        dto.SweepOutcomeFailure,
			Error:          fmt.Sprintf("panic: %v", r.Value),
			Attempts:       1,
		}
	}
	return result
}

func (s *sweeper) processItem(ctx context.Context, pass sweepPass, id string, today types.Date) *dto.SweepItemResult {
	result := &dto.SweepItemResult{SubscriptionID: id}

	operation := func() error {
		result.Attempts++

		itemCtx, cancel := context.WithTimeout(ctx, s.Config.Sweeper.ItemTimeout)
		defer cancel()

		current, err := s.SubRepo.Get(itemCtx, id)
		if err != nil {
			return retryable(err)
		}
		if !subscription.Matches(current, pass.filter) {
			result.Outcome = dto.SweepOutcomeSkipped
			return nil
		}

		if err := pass.apply(itemCtx, current, today); err != nil {
			return retryable(err)
		}
		if err := s.subs.save(itemCtx, current); err != nil {
			return retryable(err)
		}

		result.Outcome = dto.SweepOutcomeSuccess
		result.Subscription = current
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(s.retryPolicy(), ctx))
	if err != nil {
		s.Logger.Errorw("failed to process subscription in sweep",
			"sweep", pass.name,
			"subscription_id", id,
			"attempts", result.Attempts,
			"error", err)

		result.Outcome = dto.SweepOutcomeFailure
		result.Error = err.Error()
		result.Subscription = nil
		return result
	}

	if result.Outcome == dto.SweepOutcomeSkipped {
		s.Logger.Debugw("subscription no longer due, skipping",
			"sweep", pass.name,
			"subscription_id", id)
	}
	return result
}

// retryable marks errors a retry cannot fix as permanent. A version conflict
// is retried: the next attempt re-reads and either skips or applies cleanly.
func retryable(err error) error {
	if ierr.IsVersionConflict(err) {
		return err
	}
	if ierr.IsPermanent(err) {
		return backoff.Permanent(err)
	}
	return err
}

func (s *sweeper) retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if s.Config.Sweeper.RetryInitialInterval > 0 {
		b.InitialInterval = s.Config.Sweeper.RetryInitialInterval
	}
	return backoff.WithMaxRetries(b, s.Config.Sweeper.MaxRetries)
}

func (s *sweeper) concurrency() int {
	if s.Config.Sweeper.Concurrency < 1 {
		return 1
	}
	return s.Config.Sweeper.Concurrency
}
