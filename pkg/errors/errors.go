package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a classified business error that can be rendered to API clients.
// Code is a stable machine-readable identifier; Internal carries the wrapped
// cause for logs and is never serialised.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches AppErrors by code so sentinel comparisons survive WithInternal copies.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e != nil && other != nil && e.Code == other.Code
}

// WithInternal returns a copy of the AppError carrying the underlying cause.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Business error taxonomy for the identity service. InvalidCredentials is
// deliberately shared between unknown-account and wrong-password outcomes so
// clients cannot probe which addresses are registered.
var (
	ErrEmailInUse = &AppError{
		Code:       "EMAIL_IN_USE",
		Message:    "This email is already registered. Please log in or reset your password.",
		StatusCode: http.StatusConflict,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "Invalid verification token. Please request a new verification email.",
		StatusCode: http.StatusBadRequest,
	}
	ErrTokenAlreadyUsed = &AppError{
		Code:       "TOKEN_ALREADY_USED",
		Message:    "This verification link has already been used. Please log in.",
		StatusCode: http.StatusBadRequest,
	}
	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Verification link has expired. Please request a new one.",
		StatusCode: http.StatusBadRequest,
	}

	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Too many login attempts. Please try again in 15 minutes.",
		StatusCode: http.StatusTooManyRequests,
	}
	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password. Please check your details and try again.",
		StatusCode: http.StatusUnauthorized,
	}
	ErrEmailNotVerified = &AppError{
		Code:       "EMAIL_NOT_VERIFIED",
		Message:    "Please verify your email before logging in. Check your inbox for the verification link.",
		StatusCode: http.StatusForbidden,
	}

	ErrNotAuthenticated = &AppError{
		Code:       "NOT_AUTHENTICATED",
		Message:    "User not authenticated. Please log in.",
		StatusCode: http.StatusUnauthorized,
	}
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Validation failed. Check your details and try again.",
		StatusCode: http.StatusUnprocessableEntity,
	}
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}
	ErrInternalServer = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred. Please try again later.",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds an application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap converts an arbitrary error into an internal AppError, preserving the
// cause. Unexpected store failures must travel through here rather than being
// mapped onto a business kind.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       ErrInternalServer.Code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError normalises any error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}
