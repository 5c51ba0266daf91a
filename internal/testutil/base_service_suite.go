package testutil

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	"github.com/flexprice/lifecycle/internal/domain/plan"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/publisher"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/flexprice/lifecycle/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository fakes for testing
type Stores struct {
	SubscriptionRepo *InMemorySubscriptionStore
	PlanRepo         *InMemoryPlanStore
	BillingCycleRepo *InMemoryBillingCycleStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	pubsub    *InMemoryPubSub
	publisher publisher.EventPublisher
	locker    *InMemoryLocker
	clock     *MutableClock
	logger    *logger.Logger
	config    *config.Configuration
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	// keep retries fast in tests
	cfg.Sweeper.RetryInitialInterval = time.Millisecond
	cfg.Sweeper.ItemTimeout = 5 * time.Second
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetRequestID(context.Background(), types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	s.setupStores()
	s.clock = NewClockAt(types.NewDate(2024, time.January, 1))
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		PlanRepo:         NewInMemoryPlanStore(),
		BillingCycleRepo: NewInMemoryBillingCycleStore(),
	}
	s.locker = NewInMemoryLocker()
	s.pubsub = NewInMemoryPubSub()
	s.publisher = publisher.NewEventPublisher(s.pubsub, s.config, s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.SubscriptionRepo.Clear()
	s.stores.PlanRepo.Clear()
	s.stores.BillingCycleRepo.Clear()
	s.pubsub.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// SeedBillingCycle stores a billing cycle of duration units
func (s *BaseServiceTestSuite) SeedBillingCycle(id string, duration int, unit types.DurationUnit) *billingcycle.BillingCycle {
	b := &billingcycle.BillingCycle{
		ID:           id,
		Duration:     duration,
		DurationUnit: unit,
		CreatedAt:    s.clock.Now(),
	}
	s.Require().NoError(s.stores.BillingCycleRepo.Seed(s.ctx, b))
	return b
}

// SeedPlan stores a plan without a trial
func (s *BaseServiceTestSuite) SeedPlan(id string, price string, cycleID string) *plan.Plan {
	p := &plan.Plan{
		ID:             id,
		Name:           id,
		Price:          decimal.RequireFromString(price),
		BillingCycleID: cycleID,
		CreatedAt:      s.clock.Now(),
	}
	s.Require().NoError(s.stores.PlanRepo.Seed(s.ctx, p))
	return p
}

// SeedTrialPlan stores a plan offering a trial of duration units
func (s *BaseServiceTestSuite) SeedTrialPlan(id string, price string, cycleID string, duration int, unit types.DurationUnit) *plan.Plan {
	p := &plan.Plan{
		ID:                id,
		Name:              id,
		Price:             decimal.RequireFromString(price),
		BillingCycleID:    cycleID,
		TrialEnabled:      true,
		TrialDuration:     lo.ToPtr(duration),
		TrialDurationUnit: lo.ToPtr(unit),
		CreatedAt:         s.clock.Now(),
	}
	s.Require().NoError(s.stores.PlanRepo.Seed(s.ctx, p))
	return p
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() publisher.EventPublisher {
	return s.publisher
}

// GetPubSub returns the pubsub the test publisher writes to
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubsub
}

// GetLocker returns the test run locker
func (s *BaseServiceTestSuite) GetLocker() *InMemoryLocker {
	return s.locker
}

// GetClock returns the test clock
func (s *BaseServiceTestSuite) GetClock() *MutableClock {
	return s.clock
}

// SetToday moves the test clock to midnight UTC of d
func (s *BaseServiceTestSuite) SetToday(d types.Date) {
	s.clock.SetDate(d)
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
