package errors

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder assembles an error fluently. It is not an error itself:
// Mark ends every chain and returns the built error.
type ErrorBuilder struct {
	err     error
	details map[string]any
}

// NewError starts a builder chain from a new internal message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

// WithError starts a builder chain that wraps err
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithHint sets the message shown to API callers
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails adds key/values that are safe to return to callers
// and to send to sentry. Repeated calls merge, later keys win.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	if b.details == nil {
		b.details = make(map[string]any, len(details))
	}
	for k, v := range details {
		b.details[k] = v
	}
	return b
}

// Mark tags the error with a sentinel so callers can classify it with Is.
func (b *ErrorBuilder) Mark(reference error) error {
	if len(b.details) > 0 {
		if encoded, err := json.Marshal(b.details); err == nil {
			b.err = errors.WithSafeDetails(b.err, detailsPrefix+"%s", errors.Safe(string(encoded)))
		}
	}
	return errors.Mark(b.err, reference)
}
