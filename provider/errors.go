package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for vendor operations.
var (
	// ErrNotRegistered indicates no adapter is registered for the vendor.
	ErrNotRegistered = errors.New("vendor not registered")

	// ErrUnavailable indicates the vendor service is unavailable.
	ErrUnavailable = errors.New("vendor service unavailable")

	// ErrContextTooLong indicates the input exceeds the context window.
	ErrContextTooLong = errors.New("context exceeds maximum length")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the request is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrCredentialsNotFound indicates credentials are missing.
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrCredentialsRejected indicates the vendor refused the credentials.
	ErrCredentialsRejected = errors.New("credentials rejected")

	// ErrEmptyResponse indicates the vendor returned no text.
	ErrEmptyResponse = errors.New("empty response")

	// ErrUnexpectedType indicates a request or response of another vendor
	// was passed to an adapter.
	ErrUnexpectedType = errors.New("unexpected type")
)

// Error wraps vendor errors with context.
type Error struct {
	Vendor    string // Vendor name ("openai", "anthropic", etc.)
	Op        string // Operation that failed ("send", "stream")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Vendor != "" {
		return fmt.Sprintf("%s %s: %v", e.Vendor, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new vendor error.
func NewError(vendor, op string, err error, retryable bool) *Error {
	return &Error{
		Vendor:    vendor,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// StatusError classifies a failed HTTP call by status code. Adapters call
// it with the status extracted from their SDK's error type.
func StatusError(vendor, op string, status int, err error) *Error {
	var sentinel error
	retryable := false
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrCredentialsRejected
	case status == http.StatusTooManyRequests:
		sentinel, retryable = ErrRateLimited, true
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		sentinel, retryable = ErrTimeout, true
	case status == http.StatusRequestEntityTooLarge:
		sentinel = ErrContextTooLong
	case status >= 500:
		sentinel, retryable = ErrUnavailable, true
	case status >= 400:
		sentinel = ErrInvalidRequest
	default:
		return NewError(vendor, op, err, false)
	}
	return NewError(vendor, op, fmt.Errorf("%w: %w", sentinel, err), retryable)
}

// ContextError wraps context cancellation and deadline errors.
// It returns nil when err is not a context error.
func ContextError(vendor, op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(vendor, op, fmt.Errorf("%w: %w", ErrTimeout, err), true)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(vendor, op, err, false)
	}
	return nil
}

// IsRetryable checks if an error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var vendorErr *Error
	if errors.As(err, &vendorErr) {
		return vendorErr.Retryable
	}

	// Check for known retryable sentinel errors
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrCredentialsNotFound) ||
		errors.Is(err, ErrCredentialsRejected)
}
