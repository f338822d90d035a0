// dao/errors.go
package dao

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker/v2"
	"gorm.io/gorm"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
)

// IsUnavailable reports whether err means the store could not be reached, as
// opposed to the store answering with an error.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, obd_errors.ErrDatabaseUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return neo4j.IsConnectivityError(err)
}

// classify wraps a raw store error with the matching sentinel so callers can
// branch with errors.Is. The original error stays in the chain for logging.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, obd_errors.ErrNotFound)
	case IsUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, obd_errors.ErrDatabaseUnavailable, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, obd_errors.ErrDatabaseOperation, err)
	}
}
