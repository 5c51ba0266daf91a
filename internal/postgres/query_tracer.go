package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/sentry"
	sentrygo "github.com/getsentry/sentry-go"
)

// QueryTracer logs one statement and reports it as a sentry span
type QueryTracer struct {
	logger *logger.Logger
	span   *sentrygo.Span
	query  string
	params interface{}
	start  time.Time
	txID   string
}

// NewQueryTracer starts tracing query
func NewQueryTracer(ctx context.Context, logger *logger.Logger, sentry *sentry.Service, query string, params interface{}, txID string) *QueryTracer {
	span, _ := sentry.StartDBSpan(ctx, "db.query", map[string]interface{}{
		"query": query,
		"tx_id": txID,
	})
	return &QueryTracer{
		logger: logger,
		span:   span,
		query:  query,
		params: params,
		start:  time.Now(),
		txID:   txID,
	}
}

// Done logs the query completion
func (qt *QueryTracer) Done(err error) {
	if qt.span != nil {
		if err != nil && err != sql.ErrNoRows {
			qt.span.Status = sentrygo.SpanStatusInternalError
		} else {
			qt.span.Status = sentrygo.SpanStatusOK
		}
		qt.span.Finish()
	}

	fields := []interface{}{
		"duration_ms", time.Since(qt.start).Milliseconds(),
		"query", qt.query,
		"params", fmt.Sprintf("%+v", qt.params),
	}
	if qt.txID != "" {
		fields = append(fields, "tx_id", qt.txID)
	}
	// a missing row is an answer, not a failure
	if err != nil && err != sql.ErrNoRows {
		fields = append(fields, "error", err.Error())
		qt.logger.Errorw("database query failed", fields...)
		return
	}
	qt.logger.Debugw("database query completed", fields...)
}

// TracedQuerier wraps a Querier with tracing
type TracedQuerier struct {
	Querier
	logger *logger.Logger
	sentry *sentry.Service
	txID   string
}

// NewTracedQuerier creates a new traced querier
func NewTracedQuerier(q Querier, logger *logger.Logger, sentry *sentry.Service, txID string) *TracedQuerier {
	return &TracedQuerier{
		Querier: q,
		logger:  logger,
		sentry:  sentry,
		txID:    txID,
	}
}

func (tq *TracedQuerier) trace(ctx context.Context, query string, params interface{}) *QueryTracer {
	return NewQueryTracer(ctx, tq.logger, tq.sentry, query, params, tq.txID)
}

// ExecContext traces ExecContext calls
func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	tracer := tq.trace(ctx, query, args)
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	tracer.Done(err)
	return result, err
}

// NamedExecContext traces NamedExecContext calls
func (tq *TracedQuerier) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	tracer := tq.trace(ctx, query, arg)
	result, err := tq.Querier.NamedExecContext(ctx, query, arg)
	tracer.Done(err)
	return result, err
}

// GetContext traces GetContext calls
func (tq *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := tq.trace(ctx, query, args)
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}

// SelectContext traces SelectContext calls
func (tq *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := tq.trace(ctx, query, args)
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}
