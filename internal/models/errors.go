package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application. Every failure surfaced to a client
// carries exactly one of these.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeMissingToken       = "MISSING_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeExpiredToken       = "EXPIRED_TOKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeNotOwner           = "NOT_OWNER"
	CodeWindowExpired      = "WINDOW_EXPIRED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewInvalidCredentialsError carries one fixed message regardless of whether
// the username was unknown or the password wrong.
func NewInvalidCredentialsError() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: "Invalid credentials"}
}

func NewMissingTokenError() *AppError {
	return &AppError{Code: CodeMissingToken, Message: "Access denied. No token provided."}
}

func NewInvalidTokenError() *AppError {
	return &AppError{Code: CodeInvalidToken, Message: "Access denied. Invalid token."}
}

func NewExpiredTokenError() *AppError {
	return &AppError{Code: CodeExpiredToken, Message: "Access denied. Token expired."}
}

func NewUserNotFoundError() *AppError {
	return &AppError{Code: CodeUserNotFound, Message: "Access denied. User not found."}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewNotOwnerError(message string) *AppError {
	return &AppError{Code: CodeNotOwner, Message: message}
}

func NewWindowExpiredError(window time.Duration) *AppError {
	return &AppError{
		Code:    CodeWindowExpired,
		Message: fmt.Sprintf("Post can only be modified within %d minutes of creation", int(window.Minutes())),
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// statusByCode maps application error codes to HTTP statuses.
var statusByCode = map[string]int{
	CodeValidation:         fiber.StatusBadRequest,
	CodeConflict:           fiber.StatusConflict,
	CodeInvalidCredentials: fiber.StatusUnauthorized,
	CodeMissingToken:       fiber.StatusUnauthorized,
	CodeInvalidToken:       fiber.StatusUnauthorized,
	CodeExpiredToken:       fiber.StatusUnauthorized,
	CodeUserNotFound:       fiber.StatusUnauthorized,
	CodeNotFound:           fiber.StatusNotFound,
	CodeNotOwner:           fiber.StatusForbidden,
	CodeWindowExpired:      fiber.StatusForbidden,
	CodeInternal:           fiber.StatusInternalServerError,
}

// StatusFor returns the HTTP status for an error, defaulting to 500 for
// anything that is not an AppError with a known code.
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByCode[appErr.Code]; ok {
			return status
		}
	}
	return fiber.StatusInternalServerError
}

// RespondWithError creates a standardized error response with an explicit status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
	} else {
		response = ErrorResponse{Error: err.Error()}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes an error response with the status derived from
// the error's code.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err), err)
}
