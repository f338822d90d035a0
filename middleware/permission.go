// middleware/permission.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/service"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

// RequirePermission gates a route on (app, action) for the resolved business
// and stores the tenant context for handlers.
func RequirePermission(gate service.IPermissionService, app model.AppKey, action model.ActionKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithRequestID(c.Request.Context(), c.GetString(util.RequestIDKey))
		tc, err := gate.Require(ctx, util.GetSession(c), util.BusinessSelector(c), app, action)
		if err != nil {
			util.RespondWithError(c, err)
			return
		}
		c.Set(util.TenantContextKey, tc)
		c.Next()
	}
}
