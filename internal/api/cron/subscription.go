package cron

import (
	"net/http"

	"github.com/flexprice/lifecycle/internal/api/dto"
	"github.com/flexprice/lifecycle/internal/config"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler exposes the lifecycle sweeps to an external scheduler.
// Sweeps go through the job service so a cron trigger and a temporal
// schedule never run the same job at once.
type SubscriptionHandler struct {
	jobs        service.LifecycleJobService
	expirations service.ExpirationService
	clock       types.Clock
	cfg         *config.Configuration
	logger      *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(
	jobs service.LifecycleJobService,
	expirations service.ExpirationService,
	clock types.Clock,
	cfg *config.Configuration,
	logger *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		jobs:        jobs,
		expirations: expirations,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

type expireSubscriptionsQuery struct {
	LookbackDays *int `form:"lookback_days" binding:"omitempty,min=0"`
}

type upcomingQuery struct {
	Days *int `form:"days" binding:"omitempty,min=0"`
}

// ProcessRenewals renews every active auto-renewing subscription that is due
func (h *SubscriptionHandler) ProcessRenewals(c *gin.Context) {
	h.logger.Infow("starting subscription renewal cron job")

	resp, err := h.jobs.RunRenewals(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to process subscription renewals", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed subscription renewal cron job",
		"selected", resp.TotalSelected,
		"renewed", resp.TotalSuccess,
		"failed", resp.TotalFailed)
	c.JSON(http.StatusOK, resp)
}

// ExpireTrials expires trials whose trial end date has passed
func (h *SubscriptionHandler) ExpireTrials(c *gin.Context) {
	h.logger.Infow("starting trial expiration cron job")

	resp, err := h.jobs.RunTrialExpiration(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to expire trials", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed trial expiration cron job",
		"selected", resp.TotalSelected,
		"expired", resp.TotalSuccess,
		"failed", resp.TotalFailed)
	c.JSON(http.StatusOK, resp)
}

// ExpireSubscriptions expires lapsed subscriptions and finalizes pending
// cancellations. lookback_days overrides the configured report window.
func (h *SubscriptionHandler) ExpireSubscriptions(c *gin.Context) {
	var query expireSubscriptionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("lookback_days must be a non-negative integer").
			Mark(ierr.ErrValidation))
		return
	}

	h.logger.Infow("starting subscription expiration cron job", "lookback_days", query.LookbackDays)

	resp, err := h.jobs.RunExpiration(c.Request.Context(), query.LookbackDays)
	if err != nil {
		h.logger.Errorw("failed to expire subscriptions", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed subscription expiration cron job",
		"expired", len(resp.Expired),
		"cancelled", len(resp.Cancelled),
		"recently_expired", len(resp.RecentlyExpired))
	c.JSON(http.StatusOK, resp)
}

// GetTrialsEndingSoon lists trials ending within the next days days
func (h *SubscriptionHandler) GetTrialsEndingSoon(c *gin.Context) {
	days, ok := h.bindDays(c, h.cfg.Sweeper.TrialEndingSoonDays)
	if !ok {
		return
	}

	subs, err := h.expirations.GetTrialsEndingSoon(c.Request.Context(), days)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUpcomingSubscriptionsResponse(types.Today(h.clock), days, subs))
}

// GetExpiringSoon lists subscriptions whose period ends within the next days days
func (h *SubscriptionHandler) GetExpiringSoon(c *gin.Context) {
	days, ok := h.bindDays(c, h.cfg.Sweeper.ExpireSoonDays)
	if !ok {
		return
	}

	subs, err := h.expirations.GetExpireSoonSubscriptions(c.Request.Context(), days)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUpcomingSubscriptionsResponse(types.Today(h.clock), days, subs))
}

func (h *SubscriptionHandler) bindDays(c *gin.Context, fallback int) (int, bool) {
	var query upcomingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("days must be a non-negative integer").
			Mark(ierr.ErrValidation))
		return 0, false
	}
	if query.Days == nil {
		return fallback, true
	}
	return *query.Days, true
}
