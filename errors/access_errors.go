// errors/access_errors.go
package errors

import "errors"

var (
	// Identity
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionExpired  = errors.New("session expired")

	// Tenant / authorization
	ErrNoBusinessContext  = errors.New("no active business context")
	ErrBusinessNotAllowed = errors.New("no active membership for the selected business")
	ErrRoleNotPermitted   = errors.New("role not permitted for this action")
	ErrPremiumRequired    = errors.New("premium plan required")
	ErrTenantMismatch     = errors.New("request targets a different business than the active context")

	// Infrastructure
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrDatabaseOperation   = errors.New("database operation failed")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// Lookups / input
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limit exceeded")
)
