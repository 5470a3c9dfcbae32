package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/confhub/internal/api/shared"
	"github.com/phrazzld/confhub/internal/service"
)

// genericErrorMessage is shown for failures that carry no safe message.
const genericErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps registry errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden

	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, service.ErrInstanceNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidEnvironment),
		errors.Is(err, service.ErrPrefixTooShort),
		errors.Is(err, service.ErrInvalidKey),
		errors.Is(err, service.ErrInvalidValue),
		errors.Is(err, service.ErrMissingKey):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message that may be shown to the caller
// for err. Unexpected failures get a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}
	if msg, ok := service.SafeMessage(err); ok {
		return msg
	}
	return genericErrorMessage
}

// HandleAPIError writes the error envelope for err. defaultMsg, when set,
// replaces the generic message for unexpected failures.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if _, ok := service.SafeMessage(err); !ok && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns validator output into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", paramName(fe.Field()), validationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// paramName maps a request struct field to its query parameter.
func paramName(field string) string {
	switch field {
	case "OperatorID":
		return paramOperatorID
	case "Description":
		return paramDescription
	default:
		return strings.ToLower(field)
	}
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gt":
		return "must be positive"
	default:
		return "validation failed"
	}
}
