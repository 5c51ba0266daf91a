package cache

import (
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
)

// Initialize builds the process wide catalog cache
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache",
		"enabled", cfg.Cache.Enabled,
		"ttl", cfg.Cache.TTL.String())
	return NewInMemoryCache(cfg)
}
