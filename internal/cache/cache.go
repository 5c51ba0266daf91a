package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a process local key/value store for catalog lookups.
type Cache interface {
	// Get reports whether key was present and unexpired
	Get(ctx context.Context, key string) (interface{}, bool)
	// Set stores value under key; a zero expiration uses the configured TTL
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	// DeleteByPrefix drops every key under prefix, e.g. after a catalog import
	DeleteByPrefix(ctx context.Context, prefix string)
}

// Key prefixes carry a version so a change to the cached shape can never
// read entries written by an older build. Subscriptions are never cached:
// every transition must read the current version of the row.
const (
	PrefixPlan         = "plan:v1"
	PrefixBillingCycle = "billing_cycle:v1"
)

// GenerateKey joins prefix and params with colons.
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, param := range params {
		parts = append(parts, fmt.Sprint(param))
	}
	return strings.Join(parts, ":")
}
