package services

import (
	"errors"
	"fmt"
	"time"
)

// Advisor error codes. Every caller-visible failure maps to exactly one code
// so the storefront UI can pick a message and a retry strategy.
const (
	CodeValidationFailed      = "validation_failed"
	CodeContentRejected       = "content_rejected"
	CodeRateLimitExceeded     = "rate_limit_exceeded"
	CodeThrottled             = "throttled"
	CodeUpstreamConfigError   = "upstream_config_error"
	CodeUpstreamQuotaExceeded = "upstream_quota_exceeded"
	CodeUpstreamEmptyResponse = "upstream_empty_response"
	CodeUpstreamTimeout       = "upstream_timeout"
)

// AdvisorError is a structured, caller-visible advisor failure.
// Message is always human-readable; internals are never leaked through it.
type AdvisorError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	RetryAfter time.Duration `json:"-"` // set for rate_limit_exceeded and throttled
}

func (e *AdvisorError) Error() string {
	return e.Message
}

// AsAdvisorError unwraps err into an *AdvisorError if it carries one.
func AsAdvisorError(err error) (*AdvisorError, bool) {
	var advErr *AdvisorError
	if errors.As(err, &advErr) {
		return advErr, true
	}
	return nil, false
}

func newValidationError(message string) *AdvisorError {
	return &AdvisorError{Code: CodeValidationFailed, Message: message}
}

func newContentRejectedError() *AdvisorError {
	return &AdvisorError{
		Code:    CodeContentRejected,
		Message: "Your message could not be processed. Please rephrase and try again.",
	}
}

func newRateLimitError(retryAfter time.Duration) *AdvisorError {
	return &AdvisorError{
		Code:       CodeRateLimitExceeded,
		Message:    fmt.Sprintf("Hourly request limit reached. Try again in %d minutes.", int(retryAfter.Minutes())+1),
		RetryAfter: retryAfter,
	}
}

func newThrottledError(wait time.Duration) *AdvisorError {
	seconds := int(wait.Seconds())
	if wait > 0 && seconds == 0 {
		seconds = 1
	}
	return &AdvisorError{
		Code:       CodeThrottled,
		Message:    fmt.Sprintf("You're sending messages too quickly. Please wait %d seconds.", seconds),
		RetryAfter: wait,
	}
}

func newUpstreamConfigError() *AdvisorError {
	return &AdvisorError{
		Code:    CodeUpstreamConfigError,
		Message: "The advisor is misconfigured. Please contact support.",
	}
}

func newUpstreamQuotaError() *AdvisorError {
	return &AdvisorError{
		Code:    CodeUpstreamQuotaExceeded,
		Message: "The advisor is temporarily over capacity. Please try again later.",
	}
}

func newUpstreamEmptyError() *AdvisorError {
	return &AdvisorError{
		Code:    CodeUpstreamEmptyResponse,
		Message: "The advisor couldn't produce a reply. Please try again.",
	}
}

func newUpstreamTimeoutError() *AdvisorError {
	return &AdvisorError{
		Code:    CodeUpstreamTimeout,
		Message: "The advisor took too long to reply. Please try again.",
	}
}
