// controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acemetillidie0001/obd-premium-apps/audit"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/util"
	helper_util "github.com/acemetillidie0001/obd-premium-apps/util/helper"
)

type AuditController struct {
	auditService audit.Service
	now          func() time.Time
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService, now: time.Now}
}

// RegisterRoutes registers the API routes. guard must resolve the tenant
// context; decisions of other businesses are never listed.
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup, guard gin.HandlerFunc) {
	auditGroup := r.Group("/audit", guard)
	{
		auditGroup.GET("/decisions", ac.ListDecisions)
	}
}

// ListDecisions endpoint
func (ac *AuditController) ListDecisions(c *gin.Context) {
	tc := util.GetTenantContext(c)
	if tc == nil {
		util.RespondWithError(c, obd_errors.NoBusinessContext(obd_errors.ErrNoBusinessContext))
		return
	}

	from, to, err := helper_util.ParseTimeRange(c.Query("from"), c.Query("to"), ac.now().UTC())
	if err != nil {
		util.RespondWithError(c, obd_errors.Validation(err.Error(), nil))
		return
	}
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, obd_errors.Validation(err.Error(), nil))
		return
	}

	logs, err := ac.auditService.QueryDecisions(c.Request.Context(), audit.Query{
		BusinessID: tc.BusinessID,
		From:       from,
		To:         to,
		UserID:     c.Query("userId"),
		App:        c.Query("app"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if logs == nil {
		logs = []audit.AuditLog{}
	}
	util.RespondOK(c, http.StatusOK, gin.H{"decisions": logs, "limit": limit, "offset": offset})
}
