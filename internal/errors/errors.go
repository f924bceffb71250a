// Package errors defines the application error taxonomy shared by every
// stage of the request pipeline. Each AppError carries the HTTP status and the
// stable machine-readable code that clients match on; the message is free text.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

// Codes understood by clients. These values are part of the wire contract.
const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeMethodNotAllowed   Code = "METHOD_NOT_ALLOWED"
	CodeConflict           Code = "CONFLICT"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeTooManyRequests    Code = "TOO_MANY_REQUESTS"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
)

// Sentinel errors for each kind. AppError.Is matches these so callers can
// classify failures with errors.Is without inspecting codes.
var (
	// ErrValidation indicates the request input failed schema validation.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized indicates authentication is required or failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrMethodNotAllowed indicates the route exists for another method.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrConflict indicates the request conflicts with current state.
	ErrConflict = errors.New("conflict")

	// ErrPayloadTooLarge indicates the request body exceeded the size cap.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrTooManyRequests indicates the caller exceeded its rate limit.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrInternal indicates an internal server error.
	ErrInternal = errors.New("internal error")

	// ErrServiceUnavailable indicates a dependency is not reachable.
	ErrServiceUnavailable = errors.New("service unavailable")
)

var kinds = map[Code]error{
	CodeValidation:         ErrValidation,
	CodeUnauthorized:       ErrUnauthorized,
	CodeNotFound:           ErrNotFound,
	CodeMethodNotAllowed:   ErrMethodNotAllowed,
	CodeConflict:           ErrConflict,
	CodePayloadTooLarge:    ErrPayloadTooLarge,
	CodeTooManyRequests:    ErrTooManyRequests,
	CodeInternal:           ErrInternal,
	CodeServiceUnavailable: ErrServiceUnavailable,
}

// Violation describes a single schema violation found while validating input.
type Violation struct {
	// Path is the dot-joined field path, e.g. "items.0.quantity".
	Path string `json:"path"`

	// Message is the human-readable reason reported by the schema engine.
	Message string `json:"message"`
}

// AppError is a typed failure that the error translation stage renders as
// {"error": code, "message": message, "details": details}.
//
// Status and code are fixed at construction. The wrapped cause is available
// to errors.Is/As and to operator logs but is never sent to clients.
type AppError struct {
	status  int
	code    Code
	Message string
	Details any
	Err     error
}

// New creates an AppError with an explicit status and code. Handlers outside
// the core use it for domain-specific kinds; status must be 100-599.
func New(status int, code Code, message string) *AppError {
	if status < 100 || status > 599 {
		panic(fmt.Sprintf("errors: invalid status code %d", status))
	}
	return &AppError{status: status, code: code, Message: message}
}

// Status returns the HTTP status code.
func (e *AppError) Status() int { return e.status }

// Code returns the stable error code.
func (e *AppError) Code() Code { return e.code }

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's code.
func (e *AppError) Is(target error) bool {
	kind, ok := kinds[e.code]
	return ok && kind == target
}

// WithDetails attaches structured details and returns the error for chaining.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying cause and returns the error for chaining.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// Validation creates a 400 VALIDATION_ERROR. Details is typically []Violation.
func Validation(message string, details any) *AppError {
	if message == "" {
		message = "Validation error"
	}
	return New(http.StatusBadRequest, CodeValidation, message).WithDetails(details)
}

// Unauthorized creates a 401 UNAUTHORIZED.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

// NotFound creates a 404 NOT_FOUND.
func NotFound(message string) *AppError {
	if message == "" {
		message = "Not found"
	}
	return New(http.StatusNotFound, CodeNotFound, message)
}

// MethodNotAllowed creates a 405 METHOD_NOT_ALLOWED.
func MethodNotAllowed(message string) *AppError {
	if message == "" {
		message = "Method not allowed"
	}
	return New(http.StatusMethodNotAllowed, CodeMethodNotAllowed, message)
}

// Conflict creates a 409 CONFLICT.
func Conflict(message string) *AppError {
	if message == "" {
		message = "Conflict"
	}
	return New(http.StatusConflict, CodeConflict, message)
}

// PayloadTooLarge creates a 413 PAYLOAD_TOO_LARGE.
func PayloadTooLarge(message string) *AppError {
	if message == "" {
		message = "Request body too large"
	}
	return New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, message)
}

// TooManyRequests creates a 429 TOO_MANY_REQUESTS.
func TooManyRequests(message string) *AppError {
	if message == "" {
		message = "Too many requests"
	}
	return New(http.StatusTooManyRequests, CodeTooManyRequests, message)
}

// Internal creates a 500 INTERNAL_ERROR wrapping err.
func Internal(message string, err error) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return New(http.StatusInternalServerError, CodeInternal, message).WithCause(err)
}

// ServiceUnavailable creates a 503 SERVICE_UNAVAILABLE wrapping err.
func ServiceUnavailable(message string, err error) *AppError {
	if message == "" {
		message = "Service unavailable"
	}
	return New(http.StatusServiceUnavailable, CodeServiceUnavailable, message).WithCause(err)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
