package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/lifecycle/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Redis      RedisConfig      `validate:"required"`
	Temporal   TemporalConfig   `validate:"required"`
	Sweeper    SweeperConfig    `validate:"required"`
	Cache      CacheConfig
	Sentry     SentryConfig
	Events     EventsConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required,oneof=local api temporal_worker"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required"`
	User                   string `mapstructure:"user" validate:"required"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname" validate:"required"`
	SSLMode                string `mapstructure:"sslmode" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host" validate:"required"`
	Port     int           `mapstructure:"port" validate:"required"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type TemporalConfig struct {
	Address   string `mapstructure:"address" validate:"required"`
	Namespace string `mapstructure:"namespace" validate:"required"`
	TaskQueue string `mapstructure:"task_queue" validate:"required"`
	APIKey    string `mapstructure:"api_key"`
	TLS       bool   `mapstructure:"tls"`
	// Schedules are cron expressions evaluated in UTC. An empty value disables the schedule.
	RenewalSchedule         string `mapstructure:"renewal_schedule"`
	TrialExpirationSchedule string `mapstructure:"trial_expiration_schedule"`
	ExpirationSchedule      string `mapstructure:"expiration_schedule"`
}

// SweeperConfig tunes the scheduled batch passes
type SweeperConfig struct {
	BatchSize            int           `mapstructure:"batch_size" validate:"required,min=1"`
	Concurrency          int           `mapstructure:"concurrency" validate:"required,min=1"`
	ItemTimeout          time.Duration `mapstructure:"item_timeout" validate:"required"`
	MaxRetries           uint64        `mapstructure:"max_retries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	LookbackDays         int           `mapstructure:"lookback_days" validate:"min=0"`
	ExpireSoonDays       int           `mapstructure:"expire_soon_days" validate:"min=0"`
	TrialEndingSoonDays  int           `mapstructure:"trial_ending_soon_days" validate:"min=0"`
	LockTTL              time.Duration `mapstructure:"lock_ttl" validate:"required"`
	// LockBackend selects where run locks live
	LockBackend types.LockBackend `mapstructure:"lock_backend" validate:"required,oneof=redis postgres"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

type EventsConfig struct {
	Backend       types.EventsBackend `mapstructure:"backend" validate:"required,oneof=memory kafka"`
	Brokers       []string            `mapstructure:"brokers"`
	ConsumerGroup string              `mapstructure:"consumer_group"`
	ClientID      string              `mapstructure:"client_id"`
	TLS           bool                `mapstructure:"tls"`
	Topic         string              `mapstructure:"topic" validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lifecycle")

	v.SetEnvPrefix("LIFECYCLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override values that are
// absent from config.yaml.
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("postgres.host", d.Postgres.Host)
	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.user", d.Postgres.User)
	v.SetDefault("postgres.password", d.Postgres.Password)
	v.SetDefault("postgres.dbname", d.Postgres.DBName)
	v.SetDefault("postgres.sslmode", d.Postgres.SSLMode)
	v.SetDefault("postgres.max_open_conns", d.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", d.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime_minutes", d.Postgres.ConnMaxLifetimeMinutes)

	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.use_tls", d.Redis.UseTLS)
	v.SetDefault("redis.timeout", d.Redis.Timeout)

	v.SetDefault("temporal.address", d.Temporal.Address)
	v.SetDefault("temporal.namespace", d.Temporal.Namespace)
	v.SetDefault("temporal.task_queue", d.Temporal.TaskQueue)
	v.SetDefault("temporal.api_key", d.Temporal.APIKey)
	v.SetDefault("temporal.tls", d.Temporal.TLS)
	v.SetDefault("temporal.renewal_schedule", d.Temporal.RenewalSchedule)
	v.SetDefault("temporal.trial_expiration_schedule", d.Temporal.TrialExpirationSchedule)
	v.SetDefault("temporal.expiration_schedule", d.Temporal.ExpirationSchedule)

	v.SetDefault("sweeper.batch_size", d.Sweeper.BatchSize)
	v.SetDefault("sweeper.concurrency", d.Sweeper.Concurrency)
	v.SetDefault("sweeper.item_timeout", d.Sweeper.ItemTimeout)
	v.SetDefault("sweeper.max_retries", d.Sweeper.MaxRetries)
	v.SetDefault("sweeper.retry_initial_interval", d.Sweeper.RetryInitialInterval)
	v.SetDefault("sweeper.lookback_days", d.Sweeper.LookbackDays)
	v.SetDefault("sweeper.expire_soon_days", d.Sweeper.ExpireSoonDays)
	v.SetDefault("sweeper.trial_ending_soon_days", d.Sweeper.TrialEndingSoonDays)
	v.SetDefault("sweeper.lock_ttl", d.Sweeper.LockTTL)
	v.SetDefault("sweeper.lock_backend", d.Sweeper.LockBackend)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("sentry.enabled", d.Sentry.Enabled)
	v.SetDefault("sentry.dsn", d.Sentry.DSN)
	v.SetDefault("sentry.environment", d.Sentry.Environment)
	v.SetDefault("sentry.sample_rate", d.Sentry.SampleRate)

	v.SetDefault("events.backend", d.Events.Backend)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.consumer_group", d.Events.ConsumerGroup)
	v.SetDefault("events.client_id", d.Events.ClientID)
	v.SetDefault("events.tls", d.Events.TLS)
	v.SetDefault("events.topic", d.Events.Topic)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Events.Backend == types.EventsBackendKafka && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers is required when events.backend is kafka")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts, tests or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:                   "localhost",
			Port:                   5432,
			User:                   "lifecycle",
			Password:               "lifecycle",
			DBName:                 "lifecycle",
			SSLMode:                "disable",
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 60,
		},
		Redis: RedisConfig{
			Host:    "localhost",
			Port:    6379,
			Timeout: 5 * time.Second,
		},
		Temporal: TemporalConfig{
			Address:                 "localhost:7233",
			Namespace:               "default",
			TaskQueue:               "subscription-lifecycle",
			RenewalSchedule:         "0 1 * * *",
			TrialExpirationSchedule: "15 1 * * *",
			ExpirationSchedule:      "30 1 * * *",
		},
		Sweeper: SweeperConfig{
			BatchSize:            100,
			Concurrency:          1,
			ItemTimeout:          10 * time.Second,
			MaxRetries:           2,
			RetryInitialInterval: 200 * time.Millisecond,
			LookbackDays:         7,
			ExpireSoonDays:       7,
			TrialEndingSoonDays:  3,
			LockTTL:              30 * time.Minute,
			LockBackend:          types.LockBackendRedis,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Sentry: SentryConfig{
			Environment: "local",
			SampleRate:  1.0,
		},
		Events: EventsConfig{
			Backend:       types.EventsBackendMemory,
			ConsumerGroup: "subscription-lifecycle",
			ClientID:      "subscription-lifecycle",
			Topic:         "subscription_lifecycle_events",
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

func (c RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
