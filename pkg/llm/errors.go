// Error types and handling
package llm

import (
	"errors"
	"fmt"

	"github.com/chatkit-dev/chatkit/pkg/transport"
)

// Error represents a standardized LLM error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewNotConfiguredError reports a missing credential or setting. It is
// raised at adapter construction, before any transport is opened.
func NewNotConfiguredError(provider, what string) *Error {
	return &Error{
		Code:    "not_configured",
		Message: fmt.Sprintf("%s is required for %s", what, provider),
		Type:    "configuration_error",
	}
}

// IsNotConfigured reports whether err is a missing-configuration error,
// letting callers distinguish "set your key" from transport failures.
func IsNotConfigured(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == "not_configured"
}

// convertTransportError maps transport failures onto the standardized
// error format, keeping the backend's own message for non-2xx answers.
func convertTransportError(provider string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return &Error{
			Code:       fmt.Sprintf("%s_%d", provider, statusErr.StatusCode),
			Message:    string(statusErr.Body),
			Type:       "api_error",
			StatusCode: statusErr.StatusCode,
		}
	}

	return &Error{
		Code:    "network_error",
		Message: fmt.Sprintf("Request failed: %v", err),
		Type:    "network_error",
	}
}
