// controller/access_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
	"github.com/acemetillidie0001/obd-premium-apps/service"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

type AccessController struct {
	permissionService service.IPermissionService
}

func NewAccessController(permissionService service.IPermissionService) *AccessController {
	return &AccessController{permissionService: permissionService}
}

// RegisterRoutes registers the API routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	access := r.Group("/access")
	{
		access.POST("/check", ac.Check)
		access.GET("/matrix", ac.Matrix)
	}
}

type checkRequest struct {
	App    model.AppKey    `json:"app" binding:"required,appkey"`
	Action model.ActionKey `json:"action" binding:"required,actionkey"`
}

type checkResponse struct {
	Tenant  *model.TenantContext `json:"tenant"`
	App     model.AppKey         `json:"app"`
	Action  model.ActionKey      `json:"action"`
	Allowed bool                 `json:"allowed"`
	Reason  string               `json:"reason"`
	Code    obd_errors.Code      `json:"code,omitempty"`
}

// Check answers whether the caller may perform an action without performing
// it. Resolver failures still answer with their own status.
func (ac *AccessController) Check(c *gin.Context) {
	if !requireSession(c) {
		return
	}
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, util.BindingError(err))
		return
	}

	ctx := service.WithRequestID(c.Request.Context(), c.GetString(util.RequestIDKey))
	result, err := ac.permissionService.Check(ctx, util.GetSession(c), util.BusinessSelector(c), req.App, req.Action)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	util.RespondOK(c, http.StatusOK, checkResponse{
		Tenant:  result.Tenant,
		App:     req.App,
		Action:  req.Action,
		Allowed: result.Allowed,
		Reason:  result.Reason,
		Code:    obd_errors.CodeOf(result.Err),
	})
}

type matrixResponse struct {
	Tenant  *model.TenantContext    `json:"tenant"`
	Allowed []pdp_model.Requirement `json:"allowed"`
}

// Matrix lists what the caller's role may do in the resolved business.
func (ac *AccessController) Matrix(c *gin.Context) {
	tenant, allowed, err := ac.permissionService.Allowed(c.Request.Context(), util.GetSession(c), util.BusinessSelector(c))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if allowed == nil {
		allowed = []pdp_model.Requirement{}
	}
	util.RespondOK(c, http.StatusOK, matrixResponse{Tenant: tenant, Allowed: allowed})
}
