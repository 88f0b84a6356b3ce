// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/CLI output
// by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state conflict such as a duplicate entry.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates input validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidInput indicates a required field was left empty.
	// Detected locally, before any network call.
	ErrInvalidInput = errors.New("please fill in all fields")

	// ErrInvalidEmail indicates the email address is malformed.
	ErrInvalidEmail = errors.New("please enter a valid email address")

	// ErrPasswordTooShort indicates the password is under the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrUnauthorized indicates the operation requires an authenticated user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrInvalidResponse indicates the backend returned something that is
	// not an HTTP response the client could interpret.
	ErrInvalidResponse = errors.New("invalid response from server")

	// ErrAPI indicates the backend rejected the request or returned an
	// undecodable payload. The concrete message travels in APIError.
	ErrAPI = errors.New("api error")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError provides context for conflict errors.
type ConflictError struct {
	Entity string
	Reason string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error with context.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// APIError carries the human-readable message extracted from a backend
// error body (or a generic "request failed with status N" fallback).
// All remote failures surface verbatim to the caller through this type.
type APIError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *APIError) Unwrap() error {
	return ErrAPI
}

// NewAPIError creates an API error with the given message.
func NewAPIError(message string) error {
	return &APIError{Message: message}
}

// NewAPIErrorWithStatus creates an API error carrying the HTTP status that
// produced it.
func NewAPIErrorWithStatus(message string, status int) error {
	return &APIError{Message: message, Status: status}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is any local validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrPasswordTooShort)
}

// IsUnauthorized checks if an error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsAPIError checks if an error originated from the backend API.
func IsAPIError(err error) bool {
	return errors.Is(err, ErrAPI)
}

// APIMessage extracts the backend-provided message from an error chain.
// Returns the empty string when the error is not an APIError.
func APIMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return ""
}
