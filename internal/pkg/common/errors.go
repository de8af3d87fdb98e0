package common

import (
	"errors"
	"net/http"
)

// ErrorResponse is the API error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// CustomError carries an error code and HTTP status to the API edge.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError creates a new custom error.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// InputError marks a request rejected before any backend call: empty text,
// empty ingredient set, overlapping include/exclude lists.
type InputError struct {
	message string
}

func (e *InputError) Error() string { return e.message }

// NewInputError creates a new input error.
func NewInputError(message string) error {
	return &InputError{message: message}
}

// IsInputError reports whether err is an input error.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// BackendTransientError marks a backend failure worth retrying: timeout,
// 5xx, rate limiting, malformed reply.
type BackendTransientError struct {
	message string
	cause   error
}

func (e *BackendTransientError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *BackendTransientError) Unwrap() error { return e.cause }

// NewBackendTransientError wraps a retryable backend failure.
func NewBackendTransientError(message string, cause error) error {
	return &BackendTransientError{message: message, cause: cause}
}

// IsBackendTransientError reports whether err is a retryable backend failure.
func IsBackendTransientError(err error) bool {
	var te *BackendTransientError
	return errors.As(err, &te)
}

// BackendFatalError marks a backend failure that must not be retried:
// auth, quota, explicit refusal.
type BackendFatalError struct {
	message string
	cause   error
}

func (e *BackendFatalError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *BackendFatalError) Unwrap() error { return e.cause }

// NewBackendFatalError wraps a non-retryable backend failure.
func NewBackendFatalError(message string, cause error) error {
	return &BackendFatalError{message: message, cause: cause}
}

// IsBackendFatalError reports whether err is a non-retryable backend failure.
func IsBackendFatalError(err error) bool {
	var fe *BackendFatalError
	return errors.As(err, &fe)
}

// ValidationRejectedError marks a candidate record with no usable
// title/ingredients/instructions after repair.
type ValidationRejectedError struct {
	Reason string
}

func (e *ValidationRejectedError) Error() string { return e.Reason }

// NewValidationRejected creates a new validation rejection.
func NewValidationRejected(reason string) error {
	return &ValidationRejectedError{Reason: reason}
}

// IsValidationRejected reports whether err is a validation rejection.
func IsValidationRejected(err error) bool {
	var ve *ValidationRejectedError
	return errors.As(err, &ve)
}

// Predefined error codes.
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"     // 400
	ErrCodeUnauthorized       = "UNAUTHORIZED"        // 401
	ErrCodeRequestTimeout     = "REQUEST_TIMEOUT"     // 408
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"   // 429
	ErrCodeUnprocessable      = "UNPROCESSABLE"       // 422
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeBadGateway         = "BAD_GATEWAY"         // 502
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
)

// Predefined errors.
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "invalid API key", http.StatusUnauthorized, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable, nil)

	ErrCacheFull = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
	ErrCacheMiss = errors.New("cache miss")
)

// HTTPStatusFor maps a pipeline error to its HTTP status and code.
func HTTPStatusFor(err error) (int, string) {
	switch {
	case IsInputError(err):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case IsValidationRejected(err):
		return http.StatusUnprocessableEntity, ErrCodeUnprocessable
	case IsBackendFatalError(err):
		return http.StatusBadGateway, ErrCodeBadGateway
	case IsBackendTransientError(err):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
