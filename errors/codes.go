package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable discriminant carried by every API error.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodePremiumRequired     Code = "PREMIUM_REQUIRED"
	CodeTenantSafetyBlocked Code = "TENANT_SAFETY_BLOCKED"
	CodeNotFound            Code = "UPSTREAM_NOT_FOUND"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeUpstream            Code = "UPSTREAM_ERROR"
	CodeDBUnavailable       Code = "DB_UNAVAILABLE"
	CodeUnknown             Code = "UNKNOWN_ERROR"
)

var codeStatus = map[Code]int{
	CodeValidation:          http.StatusBadRequest,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodePremiumRequired:     http.StatusForbidden,
	CodeTenantSafetyBlocked: http.StatusForbidden,
	CodeNotFound:            http.StatusNotFound,
	CodeRateLimited:         http.StatusTooManyRequests,
	CodeUpstream:            http.StatusBadGateway,
	CodeDBUnavailable:       http.StatusServiceUnavailable,
	CodeUnknown:             http.StatusInternalServerError,
}

// Codes returns every code in the closed set.
func Codes() []Code {
	return []Code{
		CodeValidation, CodeUnauthorized, CodeForbidden, CodePremiumRequired,
		CodeTenantSafetyBlocked, CodeNotFound, CodeRateLimited, CodeUpstream,
		CodeDBUnavailable, CodeUnknown,
	}
}

// StatusFor returns the HTTP status for a code. Unknown codes map to 500.
func StatusFor(code Code) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AppError is a typed error that knows how it is rendered in the response envelope.
// Message is safe to show to end users; Err holds the internal cause and is never
// serialized in production.
type AppError struct {
	Code    Code
	Status  int
	Message string
	Details any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error carrying structured details.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// New builds an AppError with the status implied by code.
func New(code Code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Status:  StatusFor(code),
		Message: message,
		Err:     cause,
	}
}

func Unauthorized(cause error) *AppError {
	return New(CodeUnauthorized, "Please sign in to continue.", cause)
}

func NoBusinessContext(cause error) *AppError {
	return New(CodeForbidden, "No active business is available for your account.", cause)
}

func BusinessNotAllowed(cause error) *AppError {
	return New(CodeForbidden, "You do not have access to this business.", cause)
}

func RoleNotPermitted(cause error) *AppError {
	return New(CodeForbidden, "Your role does not allow this action.", cause)
}

func PremiumRequired(cause error) *AppError {
	return New(CodePremiumRequired, "This tool requires a Premium plan.", cause)
}

func TenantSafetyBlocked(cause error) *AppError {
	return New(CodeTenantSafetyBlocked, "This request targets a different business than the one you are working in.", cause)
}

func DBUnavailable(cause error) *AppError {
	return New(CodeDBUnavailable, "The service is temporarily unavailable. Please try again.", cause)
}

func Validation(message string, details any) *AppError {
	if message == "" {
		message = "The request is invalid."
	}
	return New(CodeValidation, message, ErrInvalidInput).WithDetails(details)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, ErrNotFound)
}

func RateLimited() *AppError {
	return New(CodeRateLimited, "Too many requests. Please slow down.", ErrRateLimited)
}

func Upstream(cause error) *AppError {
	return New(CodeUpstream, "An upstream service failed. Please try again.", cause)
}

func Unknown(cause error) *AppError {
	return New(CodeUnknown, "Something went wrong. Please try again.", cause)
}

// From converts any error into an AppError. AppErrors pass through; well-known
// sentinels map to their codes; everything else becomes UNKNOWN_ERROR.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrSessionExpired):
		return Unauthorized(err)
	case errors.Is(err, ErrNoBusinessContext):
		return NoBusinessContext(err)
	case errors.Is(err, ErrBusinessNotAllowed):
		return BusinessNotAllowed(err)
	case errors.Is(err, ErrRoleNotPermitted):
		return RoleNotPermitted(err)
	case errors.Is(err, ErrPremiumRequired):
		return PremiumRequired(err)
	case errors.Is(err, ErrTenantMismatch):
		return TenantSafetyBlocked(err)
	case errors.Is(err, ErrDatabaseUnavailable):
		return DBUnavailable(err)
	case errors.Is(err, ErrUpstreamUnavailable):
		return Upstream(err)
	case errors.Is(err, ErrNotFound):
		return NotFound("The requested item was not found.")
	case errors.Is(err, ErrRateLimited):
		return RateLimited()
	case errors.Is(err, ErrInvalidInput):
		return Validation("", nil)
	default:
		return Unknown(err)
	}
}

// CodeOf returns the code of err, or CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return From(err).Code
}
