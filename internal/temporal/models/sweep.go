package models

import (
	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/types"
)

// ExpirationSweepWorkflowInput carries the lookback window. A nil value
// uses the configured default.
type ExpirationSweepWorkflowInput struct {
	LookbackDays *int `json:"lookback_days,omitempty"`
}

// SweepResult is the compact summary a sweep activity hands back to its
// workflow. Per-item detail stays in the worker logs and lifecycle events.
type SweepResult struct {
	Sweep            string     `json:"sweep"`
	RunID            string     `json:"run_id"`
	Today            types.Date `json:"today"`
	TotalSelected    int        `json:"total_selected"`
	TotalSuccess     int        `json:"total_success"`
	TotalFailed      int        `json:"total_failed"`
	TotalSkipped     int        `json:"total_skipped"`
	TotalUnprocessed int        `json:"total_unprocessed"`
	Cancelled        bool       `json:"cancelled"`
}

// NewSweepResult condenses a sweep summary. A nil summary yields nil.
func NewSweepResult(s *dto.SweepSummary) *SweepResult {
	if s == nil {
		return nil
	}
	return &SweepResult{
		Sweep:            s.Sweep,
		RunID:            s.RunID,
		Today:            s.Today,
		TotalSelected:    s.TotalSelected,
		TotalSuccess:     s.TotalSuccess,
		TotalFailed:      s.TotalFailed,
		TotalSkipped:     s.TotalSkipped,
		TotalUnprocessed: s.TotalUnprocessed,
		Cancelled:        s.Cancelled,
	}
}

// SweepWorkflowResult is returned by every sweep workflow
type SweepWorkflowResult struct {
	// LockHeld is set when another run of the same job was in flight, in which
	// case this run did nothing
	LockHeld bool `json:"lock_held"`

	// Passes holds one entry per batch pass the run executed
	Passes []*SweepResult `json:"passes,omitempty"`

	// RecentlyExpired counts subscriptions expired within the lookback window
	RecentlyExpired int `json:"recently_expired,omitempty"`
	LookbackDays    int `json:"lookback_days,omitempty"`
}
