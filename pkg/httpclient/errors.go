package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arborly/cortex/pkg/apperr"
)

// RetryableError is what Do returns when a retried status is still
// failing once maxRetries is reached: the last HTTP status observed plus
// whatever backoff it had calculated for the attempt it didn't make
// (StatusCode is 0 only when the retry loop never ran, i.e. a negative
// maxRetries). Transport failures are not retried and come back
// unwrapped, and a ConservativeRetry status that stops after its third
// attempt comes back as the plain status error.
type RetryableError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("HTTP %d: %s (retry after %v)", e.StatusCode, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true.
func (e *RetryableError) IsRetryable() bool {
	return true
}

// Kind classifies an error returned by Client.Do into the apperr
// taxonomy the rest of the service switches on, so a tool or LLM client
// doesn't have to hardcode one apperr.Kind for every failure a retrying
// HTTP call can produce (auth rejection, timeout, and exhausted-retries
// are meaningfully different outcomes for a caller deciding whether to
// retry the whole turn). Callers that already know the failure is
// domain-specific (a decode error, a malformed request) should keep
// using their own apperr.Wrap instead of routing it through Kind.
//
// Do wraps a status in RetryableError only when its retry strategy
// retries that status. Under DefaultStrategy, 401 and 403 are not
// retried: Do returns them as a plain error, which Kind reports as
// ToolExternal; the AuthorizationRequired mapping applies to a
// RetryableError carrying 401/403, as a strategy set with
// WithRetryStrategy can produce.
func Kind(err error) apperr.Kind {
	if err == nil {
		return ""
	}
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		switch retryErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperr.AuthorizationRequired
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return apperr.ToolTimeout
		}
		return apperr.ToolExternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.ToolTimeout
	}
	return apperr.ToolExternal
}
