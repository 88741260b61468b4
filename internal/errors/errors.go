package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the request pipeline
var (
	// Transport level failure, never retried by the pipeline
	ErrNetworkFailure = errors.New("network failure")

	// Authentication errors
	ErrTokenExpired   = errors.New("access token expired")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRefreshFailure = errors.New("token refresh failed")

	// Business errors (4xx) shown verbatim to the caller
	ErrValidation = errors.New("validation failure")

	// Backend errors (5xx)
	ErrServer = errors.New("server error")
)

// TokenExpiredType is the error_type value the backend uses for an expired access token
const TokenExpiredType = "token_expired"

// APIError is a non-2xx response from the backend classified into one of the kinds above.
type APIError struct {
	Status    int    // HTTP status code
	Kind      error  // One of the Err* kinds
	Message   string // Server provided message, if any
	ErrorType string // Structured error_type field, if any
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// Classify maps a response status and error_type onto an error kind
func Classify(status int, errorType string) error {
	switch {
	case status == 401 && errorType == TokenExpiredType:
		return ErrTokenExpired
	case status == 401:
		return ErrUnauthorized
	case status >= 500:
		return ErrServer
	default:
		return ErrValidation
	}
}

// Network wraps a transport error so it matches ErrNetworkFailure
func Network(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
}

// RefreshFailed wraps the cause of a failed refresh so it matches ErrRefreshFailure
func RefreshFailed(cause error) error {
	if cause == nil {
		return ErrRefreshFailure
	}
	return fmt.Errorf("%w: %w", ErrRefreshFailure, cause)
}

// RequiresLogin reports whether err ended the session (tokens cleared, login redirect issued)
func RequiresLogin(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrRefreshFailure)
}

// Message returns the server provided message of an APIError, or err.Error()
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
