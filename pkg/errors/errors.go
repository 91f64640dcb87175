// Package errors provides custom error types for the docledger system.
// These errors enable programmatic error checking across the ledger client,
// the CLI and the HTTP API, and mirror the three failure classes of the
// script service: transport failures, service-reported failures and
// parse failures of the response envelope.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the docledger system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the session lacks the required role
	ErrForbidden = errors.New("forbidden")

	// ErrServiceFailure indicates the script service answered success:false
	ErrServiceFailure = errors.New("service reported failure")

	// ErrServiceUnavailable indicates the script service is unreachable or failing
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrRateLimited indicates that the service rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrStale indicates a result was superseded by a newer operation
	ErrStale = errors.New("stale result")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a transport-level failure talking to the script service:
// the request could not be sent, or the response carried a non-2xx status.
type APIError struct {
	Endpoint   string
	Action     string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	target := e.Action
	if target == "" {
		target = e.Endpoint
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s failed (status %d): %s", target, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request %s failed: %s", target, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= 500 || e.StatusCode == 0:
		return target == ErrServiceUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(action string, statusCode int, message string) *APIError {
	return &APIError{
		Action:     action,
		StatusCode: statusCode,
		Message:    message,
	}
}

// DefaultServiceMessage is used when the service fails without a message.
const DefaultServiceMessage = "request failed"

// ServiceError represents a logical failure reported by the script service
// through a success:false envelope.
type ServiceError struct {
	Action  string
	Message string
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = DefaultServiceMessage
	}
	if e.Action != "" {
		return fmt.Sprintf("%s: %s", e.Action, msg)
	}
	return msg
}

// Is implements errors.Is support
func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceFailure
}

// NewServiceError creates a new ServiceError
func NewServiceError(action, message string) *ServiceError {
	return &ServiceError{Action: action, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// BatchError reports a sequential batch that stopped part way.
// Items before Index were persisted and are not rolled back.
type BatchError struct {
	Operation string
	Index     int
	Total     int
	Err       error
}

// Error implements the error interface
func (e *BatchError) Error() string {
	return fmt.Sprintf("%s stopped at item %d of %d (%d persisted): %v",
		e.Operation, e.Index+1, e.Total, e.Index, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *BatchError) Unwrap() error {
	return e.Err
}

// Persisted returns how many items were written before the failure.
func (e *BatchError) Persisted() int {
	return e.Index
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "form"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "delete", "fetch"
	Resource  string // "document", "session", "request"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// AuthenticationError represents an authentication/authorization error
type AuthenticationError struct {
	Method  string // "password", "token", "role"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	if e.Method == "role" {
		return target == ErrForbidden
	}
	return target == ErrUnauthorized
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(method, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		Method:  method,
		Message: message,
		Err:     err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized checks if an error is an authentication failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if an error is a role failure
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsServiceFailure checks if the script service reported success:false
func IsServiceFailure(err error) bool {
	return errors.Is(err, ErrServiceFailure)
}

// IsServiceUnavailable checks if an error indicates the service could not be reached
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error, including an expired
// context deadline
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled checks if an error is a cancellation error, including a
// canceled context
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// UserMessage returns the text shown to a user for a failed operation.
// Service failures carry the service message; everything else is generic.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	// BatchError unwraps to its cause, so it is checked first.
	var batch *BatchError
	if errors.As(err, &batch) {
		return fmt.Sprintf("%d of %d submitted before failure: %s", batch.Index, batch.Total, UserMessage(batch.Err))
	}
	var svc *ServiceError
	if errors.As(err, &svc) {
		if svc.Message != "" {
			return svc.Message
		}
		return DefaultServiceMessage
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	var auth *AuthenticationError
	if errors.As(err, &auth) {
		return auth.Message
	}
	return "Network error, please try again"
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapAPI wraps a transport error as an APIError
func WrapAPI(action string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Action:     action,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
