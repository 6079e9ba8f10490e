package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
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

	ErrCodeDuplicatePermissionCode ErrorCode = "DUPLICATE_PERMISSION_CODE"
	ErrCodeUnknownPermissionCode   ErrorCode = "UNKNOWN_PERMISSION_CODE"
	ErrCodePermissionInactive      ErrorCode = "PERMISSION_INACTIVE"
	ErrCodePermissionNotFound      ErrorCode = "PERMISSION_NOT_FOUND"

	ErrCodeDuplicateRoleName   ErrorCode = "DUPLICATE_ROLE_NAME"
	ErrCodeSystemRoleImmutable ErrorCode = "SYSTEM_ROLE_IMMUTABLE"
	ErrCodeRoleNotFound        ErrorCode = "ROLE_NOT_FOUND"

	ErrCodeDuplicateGroupName ErrorCode = "DUPLICATE_GROUP_NAME"
	ErrCodeGroupNotFound      ErrorCode = "GROUP_NOT_FOUND"

	ErrCodeDuplicateUsername ErrorCode = "DUPLICATE_USERNAME"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserInactive      ErrorCode = "USER_INACTIVE"

	ErrCodeAppealNotFound      ErrorCode = "APPEAL_NOT_FOUND"
	ErrCodeInvalidAppealStatus ErrorCode = "INVALID_APPEAL_STATUS"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeInsufficientRank    ErrorCode = "INSUFFICIENT_RANK"
	ErrCodeUnknownFilterField  ErrorCode = "UNKNOWN_FILTER_FIELD"
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

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
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
	ErrDuplicatePermissionCode = NewConflictError("permission code already exists", ErrCodeDuplicatePermissionCode)
	ErrUnknownPermissionCode   = NewValidationError("unknown permission code", ErrCodeUnknownPermissionCode)
	ErrPermissionInactive      = NewValidationError("permission is disabled and cannot be assigned", ErrCodePermissionInactive)
	ErrPermissionNotFound      = NewNotFoundError("permission not found", ErrCodePermissionNotFound)

	ErrDuplicateRoleName   = NewConflictError("role name already exists", ErrCodeDuplicateRoleName)
	ErrSystemRoleImmutable = NewForbiddenError("system roles cannot be modified or deleted", ErrCodeSystemRoleImmutable)
	ErrRoleNotFound        = NewNotFoundError("role not found", ErrCodeRoleNotFound)

	ErrDuplicateGroupName = NewConflictError("permission group name already exists", ErrCodeDuplicateGroupName)
	ErrGroupNotFound      = NewNotFoundError("permission group not found", ErrCodeGroupNotFound)

	ErrDuplicateUsername = NewConflictError("username already exists", ErrCodeDuplicateUsername)
	ErrUserNotFound      = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrUserInactive      = NewForbiddenError("user account is inactive", ErrCodeUserInactive)

	ErrAppealNotFound      = NewNotFoundError("appeal not found", ErrCodeAppealNotFound)
	ErrInvalidAppealStatus = NewValidationError("invalid appeal status for this operation", ErrCodeInvalidAppealStatus)

	ErrInvalidCredentials = NewUnauthorizedError("invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrForbidden          = NewForbiddenError("insufficient permissions", ErrCodeForbidden)
	ErrInsufficientRank   = NewForbiddenError("actor rank too low for this assignment", ErrCodeInsufficientRank)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
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
