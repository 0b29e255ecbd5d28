// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("collaborator unavailable")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenRevoked = "TOKEN_REVOKED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeUnavailable  = "COLLABORATOR_UNAVAILABLE"
	CodeRateLimited  = "RATE_LIMITED"
)

// AppError is an error that already knows how it should be rendered.
type AppError struct {
	Status  int
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

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeUnauthorized,
		message,
		ErrUnauthorized,
	)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		http.StatusNotFound,
		CodeNotFound,
		resource+" not found",
		ErrNotFound,
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		http.StatusConflict,
		CodeConflict,
		field+" already exists",
		ErrDuplicateKey,
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeTokenExpired,
		"token has expired",
		ErrTokenExpired,
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeTokenRevoked,
		"token has been revoked",
		ErrTokenRevoked,
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeTokenInvalid,
		"token is invalid",
		ErrTokenInvalid,
	)
}

// UnavailableError reports a failed call to an upstream collaborator. It is
// rendered distinctly from an empty result so clients can show a transient
// error state instead of "no results".
func UnavailableError(operation string, err error) *AppError {
	return NewAppError(
		http.StatusBadGateway,
		CodeUnavailable,
		operation+" is temporarily unavailable",
		errors.Join(ErrUnavailable, err),
	)
}

func RateLimitedError(retryAfterSeconds int) *AppError {
	return NewAppError(
		http.StatusTooManyRequests,
		CodeRateLimited,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfterSeconds),
		nil,
	)
}
