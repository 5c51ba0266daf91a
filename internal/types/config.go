package types

type RunMode string

const (
	// ModeLocal is the mode for running both the cron API server and the temporal worker locally
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the cron API server
	ModeAPI RunMode = "api"
	// ModeTemporalWorker is the mode for running just the temporal worker
	ModeTemporalWorker RunMode = "temporal_worker"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// EventsBackend selects where lifecycle events are published
type EventsBackend string

const (
	EventsBackendMemory EventsBackend = "memory"
	EventsBackendKafka  EventsBackend = "kafka"
)

// LockBackend selects the store holding sweep run locks
type LockBackend string

const (
	LockBackendRedis    LockBackend = "redis"
	LockBackendPostgres LockBackend = "postgres"
)
