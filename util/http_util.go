// util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/acemetillidie0001/obd-premium-apps/config"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// Keys under which middleware stores request state in the gin context.
const (
	SessionKey       = "session"
	TenantContextKey = "tenantContext"
	RequestIDKey     = "requestID"
)

// SuccessResponse is the envelope of every 2xx body.
type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

// ErrorResponse is the envelope of every non-2xx body.
type ErrorResponse struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error"`
	Code    obd_errors.Code `json:"code"`
	Details any             `json:"details,omitempty"`
	// Debug carries the internal cause outside production only.
	Debug string `json:"debug,omitempty"`
}

func RespondOK(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{OK: true, Data: data})
}

// RespondWithError renders err through the envelope and aborts the chain.
// Unknown errors become UNKNOWN_ERROR; internal text only leaves the process
// outside production.
func RespondWithError(c *gin.Context, err error) {
	appErr := obd_errors.From(err)
	if appErr == nil {
		appErr = obd_errors.Unknown(nil)
	}

	fields := []zap.Field{
		zap.String("code", string(appErr.Code)),
		zap.Int("status", appErr.Status),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("requestID", c.GetString(RequestIDKey)),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	if appErr.Status >= 500 {
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Debug(appErr.Message, fields...)
	}

	body := ErrorResponse{
		OK:      false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}
	if !config.IsProduction() && appErr.Err != nil {
		body.Debug = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(appErr.Status, body)
}

// GetSession returns the session stored by the auth middleware, or nil.
func GetSession(c *gin.Context) *model.Session {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil
	}
	session, _ := v.(*model.Session)
	return session
}

// GetTenantContext returns the context stored by the permission middleware, or nil.
func GetTenantContext(c *gin.Context) *model.TenantContext {
	v, exists := c.Get(TenantContextKey)
	if !exists {
		return nil
	}
	tc, _ := v.(*model.TenantContext)
	return tc
}

func GetUserIDFromContext(c *gin.Context) string {
	if session := GetSession(c); session.Authenticated() {
		return session.Principal.ID
	}
	return ""
}

// BusinessSelector returns the explicitly requested business, header first.
func BusinessSelector(c *gin.Context) string {
	if id := c.GetHeader("X-Business-Id"); id != "" {
		return id
	}
	return c.Query("businessId")
}
