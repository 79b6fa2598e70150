package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeLoadFailed     = "LOAD_FAILED"
	ErrCodeSaveFailed     = "SAVE_FAILED"
	ErrCodeSaveInProgress = "SAVE_IN_PROGRESS"
	ErrCodeUsernameTaken  = "USERNAME_TAKEN"
	ErrCodeDeleteFailed   = "DELETE_FAILED"
	ErrCodeLogoRejected   = "LOGO_REJECTED"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "SAVE_FAILED")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain contains an AppError with code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// New builds an AppError from its parts; used when decoding remote errors.
func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewLoadFailedError reports that the persisted profile could not be fetched.
func NewLoadFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeLoadFailed,
		Message: "could not load profile",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewSaveFailedError reports a failed save. Local edits are kept.
func NewSaveFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeSaveFailed,
		Message: "could not save profile, your changes are kept",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func NewSaveInProgressError() *AppError {
	return &AppError{
		Code:    ErrCodeSaveInProgress,
		Message: "a save is already in progress",
		Status:  http.StatusConflict,
	}
}

func NewUsernameTakenError(username string) *AppError {
	return &AppError{
		Code:    ErrCodeUsernameTaken,
		Message: fmt.Sprintf("username %q is already taken", username),
		Status:  http.StatusConflict,
	}
}

// NewDeleteFailedError reports a social link delete that was rolled back.
func NewDeleteFailedError(id string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDeleteFailed,
		Message: fmt.Sprintf("could not delete social link %s, it has been restored", id),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func NewLogoRejectedError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeLogoRejected,
		Message: "logo rejected: " + reason,
		Status:  http.StatusUnprocessableEntity,
	}
}
