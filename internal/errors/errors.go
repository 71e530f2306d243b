package errors

import (
	"errors"
	"net/http"
)

// Error kinds. Every domain error unwraps to exactly one of these.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrConflict           = errors.New("conflict")
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = New(ErrNotFound, "USER_NOT_FOUND", "user not found")
	// ErrInitiativeNotFound is returned when an initiative is not found.
	ErrInitiativeNotFound = New(ErrNotFound, "INITIATIVE_NOT_FOUND", "initiative not found")
	// ErrPriorityNotFound is returned when a priority is not found.
	ErrPriorityNotFound = New(ErrNotFound, "PRIORITY_NOT_FOUND", "priority not found")
	// ErrDuplicateEmail is returned when an email belongs to another user.
	ErrDuplicateEmail = New(ErrValidation, "DUPLICATE_EMAIL", "email is already registered")
	// ErrWeakCredential is returned when a password is shorter than the minimum.
	ErrWeakCredential = New(ErrValidation, "WEAK_CREDENTIAL", "password must be at least 6 characters")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = New(ErrUnauthenticated, "INVALID_CREDENTIALS", "invalid email or password")
	// ErrAuthRequired is returned when a protected route is called without a session.
	ErrAuthRequired = New(ErrUnauthenticated, "UNAUTHENTICATED", "authentication required")
	// ErrInactiveUser is returned when a deactivated user tries to sign in.
	ErrInactiveUser = New(ErrUnauthenticated, "INACTIVE_USER", "user account is inactive")
	// ErrInvalidToken is returned for expired, revoked or malformed tokens.
	ErrInvalidToken = New(ErrUnauthenticated, "INVALID_TOKEN", "invalid or expired token")
	// ErrLastAdmin is returned when an operation would leave no active admin.
	ErrLastAdmin = New(ErrInvariantViolation, "LAST_ADMIN", "cannot remove the last active administrator")
	// ErrUserHasPriorities blocks deleting a user still referenced by priorities.
	ErrUserHasPriorities = New(ErrInvariantViolation, "USER_HAS_PRIORITIES", "user still owns priorities")
	// ErrInitiativeInUse blocks deleting an initiative still referenced by priorities.
	ErrInitiativeInUse = New(ErrInvariantViolation, "INITIATIVE_IN_USE", "initiative is referenced by priorities; deactivate it instead")
	// ErrVersionConflict is returned when an update carries a stale version.
	ErrVersionConflict = New(ErrConflict, "VERSION_CONFLICT", "record was modified by another request")
)

// DomainError carries a user-facing message and a stable code under one of the error kinds.
type DomainError struct {
	Kind    error
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the kind so callers can use errors.Is(err, ErrNotFound).
func (e *DomainError) Unwrap() error {
	return e.Kind
}

// New creates a domain error of the given kind.
func New(kind error, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// Validation is a shorthand for a validation failure with a custom message.
func Validation(message string) *DomainError {
	return New(ErrValidation, "VALIDATION_ERROR", message)
}

// Forbidden is a shorthand for a policy rejection with a custom message.
func Forbidden(message string) *DomainError {
	return New(ErrForbidden, "FORBIDDEN", message)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse is returned by delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(kind error) int {
	switch kind {
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation, ErrInvariantViolation:
		return http.StatusBadRequest
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var kindCodes = map[error]string{
	ErrUnauthenticated:    "UNAUTHENTICATED",
	ErrForbidden:          "FORBIDDEN",
	ErrNotFound:           "NOT_FOUND",
	ErrValidation:         "VALIDATION_ERROR",
	ErrInvariantViolation: "INVARIANT_VIOLATION",
	ErrConflict:           "CONFLICT",
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything that is not a domain error collapses to a generic 500 so internal
// details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return NewHTTPError(StatusFor(domainErr.Kind), domainErr.Message, domainErr.Code)
	}
	for kind, code := range kindCodes {
		if errors.Is(err, kind) {
			return NewHTTPError(StatusFor(kind), kind.Error(), code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
