package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

// HeaderRequestID carries the request id on http requests and responses
const HeaderRequestID = "X-Request-ID"

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxSweepRunID    ContextKey = "ctx_sweep_run_id"
	CtxDBTransaction ContextKey = "ctx_db_transaction"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// GetSweepRunID returns the id of the batch run the context belongs to, if any.
func GetSweepRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(CtxSweepRunID).(string); ok {
		return runID
	}
	return ""
}

func SetSweepRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, CtxSweepRunID, runID)
}
