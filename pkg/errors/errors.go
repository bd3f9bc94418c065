package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies failures so fallback branching is explicit instead of
// string-matching provider error messages at call sites.
type ErrorCode string

const (
	// Client errors
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeRateLimit  ErrorCode = "RATE_LIMIT_EXCEEDED" // inbound per-IP limit

	// Provider errors
	ErrCodeProviderRateLimited ErrorCode = "PROVIDER_RATE_LIMITED" // quota signature, fall back to mock data
	ErrCodeInvalidResponse     ErrorCode = "INVALID_RESPONSE"      // malformed or unexpected payload
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"  // missing key or init failure
	ErrCodeFetchFailed         ErrorCode = "FETCH_FAILED"          // transport or explicit provider error
)

// AppError carries a code, a caller-safe message and an optional cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// HTTPStatus maps the error code to the status the route layer returns.
// Every provider failure surfaces as a generic 400; only the inbound rate
// limiter produces 429.
func (e *AppError) HTTPStatus() int {
	if e.Code == ErrCodeRateLimit {
		return http.StatusTooManyRequests
	}
	return http.StatusBadRequest
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Code == code {
			return true
		}
		if appErr.Cause != nil {
			return HasCode(appErr.Cause, code)
		}
	}
	return false
}

// IsRateLimited reports whether err is a provider quota/rate-limit signature,
// i.e. the caller should substitute synthetic data instead of failing.
func IsRateLimited(err error) bool {
	return HasCode(err, ErrCodeProviderRateLimited)
}

// IsUnavailable reports whether the provider could not be used at all,
// typically a missing API key. Callers treat this like a rate limit and
// take the mock path.
func IsUnavailable(err error) bool {
	return HasCode(err, ErrCodeProviderUnavailable)
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
