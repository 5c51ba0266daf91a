package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	detailsPrefix         = "__json__:"
	defaultDisplayMessage = "An unexpected error occurred"
)

// ErrorResponse is the body of every failed HTTP call
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string         `json:"code"`
	Display   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewErrorResponse renders err for API callers. Only hints and reportable
// details leave the process; the wrapped cause does not.
func NewErrorResponse(err error, requestID string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:      CodeFromErr(err),
			Display:   DisplayMessage(err),
			RequestID: requestID,
			Details:   ReportableDetails(err),
		},
	}
}

// CodeFromErr returns the code of the first sentinel err is marked with.
func CodeFromErr(err error) string {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Code
		}
	}
	return ErrCodeSystemError
}

// DisplayMessage returns the outermost hint attached to err.
func DisplayMessage(err error) string {
	// GetAllHints is a post-order traversal so the first non-empty hint wins
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return defaultDisplayMessage
}

// ReportableDetails merges every detail map attached through the builder.
func ReportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			encoded, ok := strings.CutPrefix(payload, detailsPrefix)
			if !ok {
				continue
			}
			var decoded map[string]any
			if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
				continue
			}
			for k, v := range decoded {
				details[k] = v
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
