package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidScope     ErrorCode = "INVALID_SCOPE"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidService   ErrorCode = "INVALID_SERVICE_TYPE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAdminNotFound    ErrorCode = "ADMIN_NOT_FOUND"
	ErrCodeAssigneeNotFound ErrorCode = "ASSIGNEE_NOT_FOUND"

	ErrCodePermissionDenied        ErrorCode = "PERMISSION_DENIED"
	ErrCodeImpersonationNotAllowed ErrorCode = "IMPERSONATION_NOT_ALLOWED"
	ErrCodeSelfDelete              ErrorCode = "SELF_DELETE"
	ErrCodeGrantExceedsOwn         ErrorCode = "GRANT_EXCEEDS_OWN"

	ErrCodeEmailTaken       ErrorCode = "EMAIL_TAKEN"
	ErrCodeAdminHasStaff    ErrorCode = "ADMIN_HAS_EMPLOYEES"
	ErrCodeAlreadyConverted ErrorCode = "LEAD_ALREADY_CONVERTED"
	ErrCodeRecordChanged    ErrorCode = "RECORD_CHANGED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so package-level sentinels keep working after a copy
// has been decorated with details or a cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// WithCause returns a copy carrying cause; the receiver is not modified.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy carrying details; the receiver is not modified.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	// ErrNotFound is returned both for missing entities and for entities the
	// caller may not see, so responses never reveal existence.
	ErrNotFound         = NewNotFoundError("Resource not found", ErrCodeResourceNotFound)
	ErrPermissionDenied = NewForbiddenError("Not permitted", ErrCodePermissionDenied)
	ErrUnauthenticated  = NewUnauthorizedError("Authentication required", ErrCodeUnauthenticated)

	ErrAdminNotFound           = NewNotFoundError("Admin not found", ErrCodeAdminNotFound)
	ErrAssigneeNotFound        = NewValidationError("Assignee does not exist or is inactive", ErrCodeAssigneeNotFound)
	ErrImpersonationNotAllowed = NewForbiddenError("Only developers can select an admin filter", ErrCodeImpersonationNotAllowed)
	ErrSelfDelete              = NewValidationError("Users cannot delete their own account", ErrCodeSelfDelete)
	ErrEmailTaken              = NewConflictError("Email is already registered", ErrCodeEmailTaken)
	ErrAdminHasEmployees       = NewConflictError("Admin still has employees", ErrCodeAdminHasStaff)
	ErrLeadAlreadyConverted    = NewConflictError("Lead has already been converted", ErrCodeAlreadyConverted)
	ErrRecordChanged           = NewConflictError("Record was changed by another request, reload and retry", ErrCodeRecordChanged)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewUnauthorizedError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

// NewGrantExceededError names the permission fields a caller tried to grant
// beyond its own.
func NewGrantExceededError(fields []string) *AppError {
	appErr := NewForbiddenError("Cannot grant permissions the caller does not hold", ErrCodeGrantExceedsOwn)
	appErr.Details = map[string][]string{"fields": fields}
	return appErr
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromAccessError translates decisions of the access engine into API errors.
// Denials never carry detail about the entity.
func FromAccessError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, access.ErrNotVisible):
		return ErrNotFound
	case errors.Is(err, access.ErrPermissionDenied):
		return ErrPermissionDenied
	case errors.Is(err, access.ErrNoPrincipal):
		return ErrUnauthenticated
	default:
		return err
	}
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
