// util/http_util_test.go
package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	RespondWithError(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondOK(c, http.StatusCreated, gin.H{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"id":"1"}}`, w.Body.String())
}

func TestRespondWithError_StatusFromCode(t *testing.T) {
	logger.InitNop()
	tests := []struct {
		err    error
		status int
		code   obd_errors.Code
	}{
		{obd_errors.Unauthorized(nil), http.StatusUnauthorized, obd_errors.CodeUnauthorized},
		{obd_errors.RoleNotPermitted(nil), http.StatusForbidden, obd_errors.CodeForbidden},
		{obd_errors.PremiumRequired(nil), http.StatusForbidden, obd_errors.CodePremiumRequired},
		{obd_errors.DBUnavailable(errors.New("dial tcp: refused")), http.StatusServiceUnavailable, obd_errors.CodeDBUnavailable},
		{fmt.Errorf("wrapped: %w", obd_errors.ErrDatabaseUnavailable), http.StatusServiceUnavailable, obd_errors.CodeDBUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, obd_errors.CodeUnknown},
		{obd_errors.RateLimited(), http.StatusTooManyRequests, obd_errors.CodeRateLimited},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			w, body := render(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, string(tt.code), body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRespondWithError_DebugOnlyOutsideProduction(t *testing.T) {
	logger.InitNop()
	cause := errors.New("pq: password authentication failed for user obd")

	viper.Set("server.env", "development")
	_, body := render(t, obd_errors.DBUnavailable(cause))
	assert.Contains(t, body["debug"], "password authentication failed")

	viper.Set("server.env", "production")
	defer viper.Set("server.env", "development")
	w, body := render(t, obd_errors.DBUnavailable(cause))
	_, hasDebug := body["debug"]
	assert.False(t, hasDebug)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestBindingErrorDetails(t *testing.T) {
	v := NewValidationUtil()
	type req struct {
		App    model.AppKey    `json:"app" binding:"required,appkey"`
		Action model.ActionKey `json:"action" binding:"required,actionkey"`
	}

	err := v.Struct(req{App: "OBD_NOPE", Action: ""})
	var appErr *obd_errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, obd_errors.CodeValidation, appErr.Code)
	assert.Equal(t, []FieldError{{Field: "app", Rule: "appkey"}, {Field: "action", Rule: "required"}}, appErr.Details)

	assert.NoError(t, v.Struct(req{App: model.AppCRM, Action: model.ActionView}))
}

func TestBindingErrorMalformedJSON(t *testing.T) {
	var target map[string]any
	err := BindingError(json.Unmarshal([]byte("{"), &target))
	assert.Equal(t, obd_errors.CodeValidation, obd_errors.CodeOf(err))
}

func TestContextAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?businessId=b-query", nil)

	assert.Nil(t, GetSession(c))
	assert.Nil(t, GetTenantContext(c))
	assert.Equal(t, "", GetUserIDFromContext(c))
	assert.Equal(t, "b-query", BusinessSelector(c))

	c.Request.Header.Set("X-Business-Id", "b-header")
	assert.Equal(t, "b-header", BusinessSelector(c))

	c.Set(SessionKey, &model.Session{Principal: model.Principal{ID: "u1"}})
	assert.Equal(t, "u1", GetUserIDFromContext(c))
}
