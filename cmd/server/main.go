package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/flexprice/lifecycle/internal/api"
	"github.com/flexprice/lifecycle/internal/api/cron"
	v1 "github.com/flexprice/lifecycle/internal/api/v1"
	"github.com/flexprice/lifecycle/internal/cache"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/proration"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/postgres"
	"github.com/flexprice/lifecycle/internal/publisher"
	"github.com/flexprice/lifecycle/internal/pubsub"
	"github.com/flexprice/lifecycle/internal/pubsub/kafka"
	"github.com/flexprice/lifecycle/internal/pubsub/memory"
	"github.com/flexprice/lifecycle/internal/repository"
	"github.com/flexprice/lifecycle/internal/sentry"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/temporal"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/flexprice/lifecycle/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	// The deployment mode decides which components are started, so the
	// configuration is loaded before the fx graph is built.
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Supply(cfg),
		fx.Provide(
			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			cache.Initialize,

			// Postgres
			provideDB,

			// Events
			providePubSub,
			publisher.NewEventPublisher,

			provideClock,
		),
		fx.Invoke(
			validator.NewValidator,
			sentry.RegisterHooks,
		),
	)

	// Repositories
	opts = append(opts,
		fx.Provide(
			repository.NewSubscriptionRepository,
			repository.NewPlanRepository,
			repository.NewBillingCycleRepository,
			repository.NewLocker,
		),
	)

	// Services
	opts = append(opts,
		fx.Provide(
			proration.NewCalculator,
			service.NewServiceParams,
			service.NewLifecycleJobService,
			service.NewExpirationService,
		),
	)

	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		opts = append(opts, apiOptions(), temporalOptions())
	case types.ModeAPI:
		opts = append(opts, apiOptions())
	case types.ModeTemporalWorker:
		opts = append(opts, temporalOptions())
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	app := fx.New(opts...)
	app.Run()
}

func apiOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startAPIServer),
	)
}

func temporalOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			provideTemporalClient,
			temporal.NewScheduleManager,
			temporal.NewWorker,
		),
		fx.Invoke(startTemporalWorker),
	)
}

func provideClock() types.Clock {
	return types.SystemClock{}
}

func provideDB(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger, sentrySvc *sentry.Service) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg, log, sentrySvc)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
	return db, nil
}

func providePubSub(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (pubsub.Publisher, error) {
	var ps pubsub.PubSub
	switch cfg.Events.Backend {
	case types.EventsBackendKafka:
		var err error
		ps, err = kafka.NewPubSub(cfg, log)
		if err != nil {
			return nil, err
		}
	default:
		ps = memory.NewPubSub(log)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ps.Close()
		},
	})
	return ps, nil
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	db *postgres.DB,
	clock types.Clock,
	jobService service.LifecycleJobService,
	expirationService service.ExpirationService,
) api.Handlers {
	return api.Handlers{
		Health:           v1.NewHealthHandler(map[string]v1.Pinger{"postgres": db}, logger),
		CronSubscription: cron.NewSubscriptionHandler(jobService, expirationService, clock, cfg, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func provideTemporalClient(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*temporal.TemporalClient, error) {
	c, err := temporal.NewTemporalClient(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Close()
			return nil
		},
	})
	return c, nil
}

func startTemporalWorker(
	lc fx.Lifecycle,
	worker *temporal.Worker,
	schedules *temporal.ScheduleManager,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := schedules.Sync(ctx); err != nil {
				log.Errorw("failed to sync temporal schedules", "error", err)
				return err
			}
			return nil
		},
	})
	worker.RegisterWithLifecycle(lc)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
