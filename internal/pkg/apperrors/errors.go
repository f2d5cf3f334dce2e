package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the intake pipeline
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Workflow errors
	ErrPreconditionFailed = errors.New("precondition failed")

	// Collaborator errors (attachment store, document renderer, spreadsheet writer)
	ErrUpstreamFailure = errors.New("upstream failure")
)

// Enquiry errors
var (
	ErrEnquiryNotFound    = NewResourceNotFoundError("enquiry not found")
	ErrEnquiryNotApproved = NewPreconditionFailedError("enquiry has not been approved")
)

// Admission errors
var (
	ErrAdmissionNotFound = NewResourceNotFoundError("admission not found")
	ErrAdmissionExists   = NewConflictError("an admission has already been submitted for this enquiry")
)

// Staff errors
var (
	ErrStaffNotFound = NewResourceNotFoundError("staff user not found")
	ErrStaffExists   = NewConflictError("staff user with this email already exists")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError reports missing or malformed input.
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewPreconditionFailedError reports a request that is well formed but not allowed yet.
func NewPreconditionFailedError(message string) error {
	return &CustomError{
		Err:     ErrPreconditionFailed,
		Message: message,
	}
}

// NewUpstreamError wraps a collaborator failure. The cause is kept for logs only.
func NewUpstreamError(message string, cause error) error {
	return &CustomError{
		Err:     ErrUpstreamFailure,
		Message: message,
		Cause:   cause,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Cause   error
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *CustomError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// PublicMessage is the text safe to show to API clients.
func (e *CustomError) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// PublicMessage extracts a client-safe message from err, falling back to def.
func PublicMessage(err error, def string) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.PublicMessage()
	}
	return def
}
