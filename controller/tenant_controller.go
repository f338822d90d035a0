// controller/tenant_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/service"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

// SessionIssuer mints a replacement token after a business switch.
type SessionIssuer interface {
	Issue(session *model.Session, ttl time.Duration) (string, error)
}

type TenantController struct {
	tenantService service.ITenantService
	issuer        SessionIssuer
	sessionTTL    time.Duration
}

// NewTenantController builds the controller. issuer may be nil, in which case
// a switch is recorded but no new token is returned.
func NewTenantController(tenantService service.ITenantService, issuer SessionIssuer, sessionTTL time.Duration) *TenantController {
	return &TenantController{
		tenantService: tenantService,
		issuer:        issuer,
		sessionTTL:    sessionTTL,
	}
}

// RegisterRoutes registers the API routes
func (tc *TenantController) RegisterRoutes(r *gin.RouterGroup) {
	tenant := r.Group("/tenant")
	{
		tenant.GET("/context", tc.GetContext)
		tenant.GET("/businesses", tc.ListBusinesses)
		tenant.POST("/switch", tc.Switch)
	}
}

// GetContext endpoint
func (tc *TenantController) GetContext(c *gin.Context) {
	tenant, err := tc.tenantService.Resolve(c.Request.Context(), util.GetSession(c), util.BusinessSelector(c))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondOK(c, http.StatusOK, tenant)
}

// ListBusinesses endpoint
func (tc *TenantController) ListBusinesses(c *gin.Context) {
	choices, err := tc.tenantService.ListContexts(c.Request.Context(), util.GetSession(c))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondOK(c, http.StatusOK, gin.H{"businesses": choices})
}

type switchRequest struct {
	BusinessID string `json:"businessId" binding:"required"`
}

type switchResponse struct {
	Tenant *model.TenantContext `json:"tenant"`
	Token  string               `json:"token,omitempty"`
}

// Switch endpoint
func (tc *TenantController) Switch(c *gin.Context) {
	if !requireSession(c) {
		return
	}
	session := util.GetSession(c)

	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, util.BindingError(err))
		return
	}

	tenant, err := tc.tenantService.Switch(c.Request.Context(), session, req.BusinessID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	resp := switchResponse{Tenant: tenant}
	if tc.issuer != nil {
		next := *session
		next.ActiveBusinessID = tenant.BusinessID
		token, err := tc.issuer.Issue(&next, tc.sessionTTL)
		if err != nil {
			util.RespondWithError(c, obd_errors.Unknown(err))
			return
		}
		resp.Token = token
	}
	util.RespondOK(c, http.StatusOK, resp)
}
