package api

import (
	"github.com/flexprice/lifecycle/internal/api/cron"
	v1 "github.com/flexprice/lifecycle/internal/api/v1"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health           *v1.HealthHandler
	CronSubscription *cron.SubscriptionHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.SentryTagMiddleware,
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)

	// Cron routes, called by an external scheduler when temporal schedules
	// are not used
	cronGroup := router.Group("/cron")
	{
		subscriptionGroup := cronGroup.Group("/subscriptions")
		{
			subscriptionGroup.POST("/renewals", handlers.CronSubscription.ProcessRenewals)
			subscriptionGroup.POST("/trials/expire", handlers.CronSubscription.ExpireTrials)
			subscriptionGroup.POST("/expire", handlers.CronSubscription.ExpireSubscriptions)
			subscriptionGroup.GET("/trials/ending-soon", handlers.CronSubscription.GetTrialsEndingSoon)
			subscriptionGroup.GET("/expiring-soon", handlers.CronSubscription.GetExpiringSoon)
		}
	}

	return router
}
