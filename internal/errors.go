package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeLocked       ErrorType = "LOCKED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeCSVMissingColumn ErrorCode = "CSV_MISSING_COLUMN"
	ErrCodeCSVEmptyFile     ErrorCode = "CSV_EMPTY_FILE"
	ErrCodeCSVTooLarge      ErrorCode = "CSV_TOO_LARGE"

	ErrCodeVersionConflict   ErrorCode = "VERSION_CONFLICT"
	ErrCodeRecordLocked      ErrorCode = "RECORD_LOCKED"
	ErrCodeDuplicateRoleName ErrorCode = "DUPLICATE_ROLE_NAME"

	ErrCodeCustomerNotFound   ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodePermissionNotFound ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeAccessCodeNotFound ErrorCode = "ACCESS_CODE_NOT_FOUND"

	ErrCodeInvalidAccessCode ErrorCode = "INVALID_ACCESS_CODE"
	ErrCodeInvalidAdminLogin ErrorCode = "INVALID_ADMIN_LOGIN"
	ErrCodeInvalidToken      ErrorCode = "INVALID_TOKEN"
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
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewLockedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeLocked,
		Code:       ErrCodeRecordLocked,
		Message:    message,
		StatusCode: http.StatusLocked,
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

// NewSchemaError reports a CSV file whose header misses a required column.
func NewSchemaError(column string) *AppError {
	return NewValidationError(fmt.Sprintf("missing column: %s", column), ErrCodeCSVMissingColumn).
		WithDetails(map[string]string{"column": column})
}

// NewEmptyInputError reports a CSV file without any data lines.
func NewEmptyInputError() *AppError {
	return NewValidationError("empty CSV file", ErrCodeCSVEmptyFile)
}

// NewVersionConflictError carries the authoritative server version so the
// client can refetch state and retry.
func NewVersionConflictError(serverVersion int64) *AppError {
	return NewConflictError("assignment was saved by another session in the meantime", ErrCodeVersionConflict).
		WithDetails(map[string]int64{"serverVersion": serverVersion})
}

var (
	ErrRecordLocked      = NewLockedError("record is locked, no further changes allowed")
	ErrDuplicateRoleName = NewConflictError("a role with this name already exists", ErrCodeDuplicateRoleName)

	ErrCustomerNotFound   = NewNotFoundError("customer not found", ErrCodeCustomerNotFound)
	ErrRoleNotFound       = NewNotFoundError("role not found", ErrCodeRoleNotFound)
	ErrPermissionNotFound = NewNotFoundError("permission not found", ErrCodePermissionNotFound)
	ErrAccessCodeNotFound = NewNotFoundError("access code not found", ErrCodeAccessCodeNotFound)

	ErrInvalidAccessCode = NewUnauthorizedError("invalid or inactive access code", ErrCodeInvalidAccessCode)
	ErrInvalidAdminLogin = NewUnauthorizedError("invalid admin credentials", ErrCodeInvalidAdminLogin)
	ErrInvalidToken      = NewUnauthorizedError("invalid session token", ErrCodeInvalidToken)
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
