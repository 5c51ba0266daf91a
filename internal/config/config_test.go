package config

import (
	"testing"

	"github.com/flexprice/lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 7, cfg.Sweeper.ExpireSoonDays)
	assert.Equal(t, types.ModeLocal, cfg.Deployment.Mode)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Configuration)
	}{
		{"unknown mode", func(c *Configuration) { c.Deployment.Mode = "batch" }},
		{"zero batch size", func(c *Configuration) { c.Sweeper.BatchSize = 0 }},
		{"zero concurrency", func(c *Configuration) { c.Sweeper.Concurrency = 0 }},
		{"negative lookback", func(c *Configuration) { c.Sweeper.LookbackDays = -1 }},
		{"unknown events backend", func(c *Configuration) { c.Events.Backend = "nats" }},
		{"kafka without brokers", func(c *Configuration) {
			c.Events.Backend = types.EventsBackendKafka
			c.Events.Brokers = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewConfigReadsEnvironment(t *testing.T) {
	t.Setenv("LIFECYCLE_SWEEPER_CONCURRENCY", "4")
	t.Setenv("LIFECYCLE_DEPLOYMENT_MODE", "api")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Sweeper.Concurrency)
	assert.Equal(t, types.ModeAPI, cfg.Deployment.Mode)
}

func TestGetDSN(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t,
		"user=lifecycle password=lifecycle dbname=lifecycle host=localhost port=5432 sslmode=disable",
		cfg.Postgres.GetDSN(),
	)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddress())
}
