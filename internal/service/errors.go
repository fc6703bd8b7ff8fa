package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/magicphoto-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps each to a status code.
var (
	// ErrInvalidInput indicates a request is missing or has malformed fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientFunds indicates the user cannot pay for a generation.
	ErrInsufficientFunds = errors.New("insufficient points")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTaskNotFound indicates the generation task does not exist.
	ErrTaskNotFound = errors.New("generation task not found")

	// ErrTaskNotCompleted indicates a result was requested before the task completed.
	ErrTaskNotCompleted = errors.New("generation task not completed")

	// ErrGalleryItemNotFound indicates the gallery item does not exist.
	ErrGalleryItemNotFound = errors.New("gallery item not found")

	// ErrInvalidPage indicates pagination parameters are out of range.
	ErrInvalidPage = errors.New("invalid pagination parameters")
)

// ServiceError wraps unexpected errors from a service with context.
type ServiceError struct {
	// Service is the service that failed (e.g., "photo", "gallery")
	Service string
	// Operation is the operation that failed (e.g., "submit", "publish")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// storeSentinels maps store-level conditions to the service sentinels callers see.
var storeSentinels = []struct {
	from error
	to   error
}{
	{store.ErrInsufficientFunds, ErrInsufficientFunds},
	{store.ErrUserNotFound, ErrUserNotFound},
	{store.ErrTaskNotFound, ErrTaskNotFound},
	{store.ErrGalleryItemNotFound, ErrGalleryItemNotFound},
}

// NewServiceError creates a ServiceError. Known sentinel conditions are
// returned as the bare service sentinel instead of being wrapped.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, s := range storeSentinels {
		if errors.Is(err, s.to) || errors.Is(err, s.from) {
			return s.to
		}
	}
	if errors.Is(err, ErrTaskNotCompleted) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidPage) {
		return err
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
