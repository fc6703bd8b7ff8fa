package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/magicphoto-api/internal/api/shared"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/platform/filestore"
	"github.com/phrazzld/magicphoto-api/internal/service"
	"github.com/phrazzld/magicphoto-api/internal/service/auth"
)

// Application error codes returned in the "code" field of error bodies.
const (
	CodeInsufficientPoints = 1001
	CodeUnsupportedFile    = 1002
	CodeFileTooLarge       = 1003
	CodeTaskNotFound       = 2001
	CodeTaskNotCompleted   = 2002
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrGalleryItemNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrTaskNotCompleted):
		return http.StatusConflict

	case errors.Is(err, filestore.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrInvalidQueryParam),
		errors.Is(err, filestore.ErrEmptyFile),
		errors.Is(err, filestore.ErrUnsupportedType):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"
	case errors.Is(err, service.ErrInsufficientFunds):
		return "Insufficient points"
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrTaskNotFound):
		return "Generation task not found"
	case errors.Is(err, service.ErrTaskNotCompleted):
		return "Generation not completed, try again later"
	case errors.Is(err, service.ErrGalleryItemNotFound):
		return "Gallery item not found"
	case errors.Is(err, service.ErrInvalidPage):
		return "Invalid pagination parameters"
	case errors.Is(err, shared.ErrInvalidQueryParam):
		return "Invalid query parameter"
	case errors.Is(err, filestore.ErrEmptyFile):
		return "File is empty"
	case errors.Is(err, filestore.ErrFileTooLarge):
		return "File exceeds the upload size limit"
	case errors.Is(err, filestore.ErrUnsupportedType):
		return "Unsupported file format"
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return "Invalid request parameters"
	default:
		return "An unexpected error occurred"
	}
}

// errorCode returns the application error code for err, or the status code
// when no specific code applies.
func errorCode(err error, status int) int {
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return CodeInsufficientPoints
	case errors.Is(err, filestore.ErrUnsupportedType):
		return CodeUnsupportedFile
	case errors.Is(err, filestore.ErrFileTooLarge):
		return CodeFileTooLarge
	case errors.Is(err, service.ErrTaskNotFound):
		return CodeTaskNotFound
	case errors.Is(err, service.ErrTaskNotCompleted):
		return CodeTaskNotCompleted
	default:
		return status
	}
}

// HandleAPIError writes the response for err. A non-empty message replaces
// the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	opts := []shared.ResponseOption{shared.WithErrorCode(errorCode(err, status))}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 response describing the first failed field.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err,
		shared.WithErrorCode(http.StatusBadRequest))
}

// SanitizeValidationError turns validator output into a short message that
// names the field without echoing internal struct names.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "url", "http_url":
		return "invalid URL"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
