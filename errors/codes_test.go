package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   obd_errors.Code
		status int
	}{
		{obd_errors.CodeValidation, http.StatusBadRequest},
		{obd_errors.CodeUnauthorized, http.StatusUnauthorized},
		{obd_errors.CodeForbidden, http.StatusForbidden},
		{obd_errors.CodePremiumRequired, http.StatusForbidden},
		{obd_errors.CodeTenantSafetyBlocked, http.StatusForbidden},
		{obd_errors.CodeNotFound, http.StatusNotFound},
		{obd_errors.CodeRateLimited, http.StatusTooManyRequests},
		{obd_errors.CodeUpstream, http.StatusBadGateway},
		{obd_errors.CodeDBUnavailable, http.StatusServiceUnavailable},
		{obd_errors.CodeUnknown, http.StatusInternalServerError},
		{obd_errors.Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, obd_errors.StatusFor(tt.code))
		})
	}
}

func TestEveryCodeHasStatus(t *testing.T) {
	for _, code := range obd_errors.Codes() {
		assert.NotZero(t, obd_errors.StatusFor(code), "code %s", code)
	}
}

func TestFromSentinels(t *testing.T) {
	tests := []struct {
		err  error
		code obd_errors.Code
	}{
		{obd_errors.ErrUnauthenticated, obd_errors.CodeUnauthorized},
		{fmt.Errorf("lookup: %w", obd_errors.ErrNoBusinessContext), obd_errors.CodeForbidden},
		{obd_errors.ErrRoleNotPermitted, obd_errors.CodeForbidden},
		{obd_errors.ErrPremiumRequired, obd_errors.CodePremiumRequired},
		{obd_errors.ErrTenantMismatch, obd_errors.CodeTenantSafetyBlocked},
		{fmt.Errorf("query memberships: %w", obd_errors.ErrDatabaseUnavailable), obd_errors.CodeDBUnavailable},
		{obd_errors.ErrRateLimited, obd_errors.CodeRateLimited},
		{errors.New("boom"), obd_errors.CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, obd_errors.From(tt.err).Code)
		})
	}
}

func TestAppErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("dial tcp: %w", obd_errors.ErrDatabaseUnavailable)
	err := fmt.Errorf("resolve tenant: %w", obd_errors.DBUnavailable(cause))

	var appErr *obd_errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, obd_errors.CodeDBUnavailable, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.True(t, errors.Is(err, obd_errors.ErrDatabaseUnavailable))
	assert.NotContains(t, appErr.Message, "dial tcp")
}

func TestWithDetailsCopies(t *testing.T) {
	base := obd_errors.Validation("bad", nil)
	withDetails := base.WithDetails([]string{"field"})
	assert.Nil(t, base.Details)
	assert.Equal(t, []string{"field"}, withDetails.Details)
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, obd_errors.From(nil))
	assert.Equal(t, obd_errors.Code(""), obd_errors.CodeOf(nil))
}
