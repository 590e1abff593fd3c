package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies an error so callers can branch on it without parsing text
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindStateConflict      Kind = "state_conflict"
	KindAmountMismatch     Kind = "amount_mismatch"
	KindInvalidComposition Kind = "invalid_package_composition"
	KindChairUnavailable   Kind = "chair_unavailable"
	KindStaleState         Kind = "stale_state"
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindBadRequest         Kind = "bad_request"
	KindInternal           Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Kind, so errors.Is(err, ErrStaleState) holds for any stale-state error
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports whether resubmitting (with corrected input or after a re-fetch) can succeed
func (e *AppError) Retryable() bool {
	switch e.Kind {
	case KindValidation, KindAmountMismatch, KindStaleState:
		return true
	}
	return false
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrValidation         = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Validation failed"}
	ErrStateConflict      = &AppError{Code: http.StatusConflict, Kind: KindStateConflict, Message: "Operation not allowed in the current state"}
	ErrAmountMismatch     = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindAmountMismatch, Message: "Payments do not match the payable amount"}
	ErrInvalidComposition = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInvalidComposition, Message: "Package has no services"}
	ErrChairUnavailable   = &AppError{Code: http.StatusConflict, Kind: KindChairUnavailable, Message: "Chair is not available"}
	ErrStaleState         = &AppError{Code: http.StatusConflict, Kind: KindStaleState, Message: "Record was modified concurrently, re-fetch and retry"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForStatus(code),
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldError is a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: message,
		Errors:  []FieldError{{Field: field, Message: message}},
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a state conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindStateConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewAmountMismatchError reports the expected and received totals
func NewAmountMismatchError(payable, received fmt.Stringer) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindAmountMismatch,
		Message: fmt.Sprintf("Payments total %s but %s is payable", received, payable),
	}
}

// NewChairUnavailableError names the chair that could not be taken
func NewChairUnavailableError(chairNumber string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindChairUnavailable,
		Message: fmt.Sprintf("Chair %s is not available", chairNumber),
	}
}

// NewInvalidCompositionError creates an invalid package composition error
func NewInvalidCompositionError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInvalidComposition,
		Message: message,
	}
}

// FromBindingError converts gin/validator binding failures into field errors
func FromBindingError(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   toSnakeCase(fe.Field()),
				Message: describeTag(fe),
			})
		}
		return NewValidationError(fields)
	}
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Invalid request body: " + err.Error(),
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "dive":
		return "contains an invalid entry"
	}
	return "failed on " + fe.Tag()
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusConflict:
		return KindStateConflict
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusBadRequest:
		return KindBadRequest
	}
	return KindInternal
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the error kind, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err is an AppError the caller may retry
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Retryable()
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
