package models

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

const (
	// DefaultWorkerStopTimeout is the default timeout for worker graceful shutdown
	DefaultWorkerStopTimeout = time.Second * 30

	// DefaultMaxConcurrentActivities bounds concurrent sweep activities per worker.
	// Each sweep fans out internally so a handful is plenty.
	DefaultMaxConcurrentActivities = 10

	// DefaultMaxConcurrentWorkflows is the default maximum number of concurrent workflow tasks
	DefaultMaxConcurrentWorkflows = 100

	// SweepActivityTimeout bounds one sweep activity attempt
	SweepActivityTimeout = time.Minute * 30

	DefaultInitialInterval    = time.Second * 10
	DefaultMaximumInterval    = time.Minute * 5
	DefaultBackoffCoefficient = 2.0
	DefaultMaximumAttempts    = 3
)

// Application error types raised by sweep activities. Both are non-retryable.
const (
	ErrTypeValidation = "ValidationError"
	ErrTypePermanent  = "PermanentError"
)

// WorkerOptions represents configuration options for creating a Temporal worker
type WorkerOptions struct {
	MaxConcurrentActivityExecutionSize     int
	MaxConcurrentWorkflowTaskExecutionSize int
	WorkerStopTimeout                      time.Duration
}

// DefaultWorkerOptions returns the default worker options
func DefaultWorkerOptions() *WorkerOptions {
	return &WorkerOptions{
		MaxConcurrentActivityExecutionSize:     DefaultMaxConcurrentActivities,
		MaxConcurrentWorkflowTaskExecutionSize: DefaultMaxConcurrentWorkflows,
		WorkerStopTimeout:                      DefaultWorkerStopTimeout,
	}
}

// ToSDKOptions converts WorkerOptions to Temporal SDK worker.Options
func (o *WorkerOptions) ToSDKOptions() worker.Options {
	return worker.Options{
		MaxConcurrentActivityExecutionSize:     o.MaxConcurrentActivityExecutionSize,
		MaxConcurrentWorkflowTaskExecutionSize: o.MaxConcurrentWorkflowTaskExecutionSize,
		WorkerStopTimeout:                      o.WorkerStopTimeout,
	}
}

// SweepActivityOptions are the activity options every sweep workflow uses
func SweepActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: SweepActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        DefaultInitialInterval,
			BackoffCoefficient:     DefaultBackoffCoefficient,
			MaximumInterval:        DefaultMaximumInterval,
			MaximumAttempts:        DefaultMaximumAttempts,
			NonRetryableErrorTypes: []string{ErrTypeValidation, ErrTypePermanent},
		},
	}
}
