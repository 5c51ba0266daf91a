package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex subs_01HZX3Q8J4M9R2T6V0W5Y7K1NB
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_PLAN          = "plan"
	UUID_PREFIX_BILLING_CYCLE = "cycle"
	UUID_PREFIX_SUBSCRIPTION  = "subs"
	UUID_PREFIX_SUBSCRIBER    = "cust"
	UUID_PREFIX_SWEEP_RUN     = "sweep"
	UUID_PREFIX_EVENT         = "event"
	UUID_PREFIX_REQUEST       = "req"
)
