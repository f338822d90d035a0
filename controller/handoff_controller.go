// controller/handoff_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/handoff"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/service"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

// StorageFactory returns the handoff storage scoped to one session.
type StorageFactory func(sessionID string) handoff.Storage

type HandoffController struct {
	permissionService service.IPermissionService
	storageFor        StorageFactory
	defaultTTL        time.Duration
	options           []handoff.Option
}

func NewHandoffController(
	permissionService service.IPermissionService,
	storageFor StorageFactory,
	defaultTTL time.Duration,
	options ...handoff.Option,
) *HandoffController {
	return &HandoffController{
		permissionService: permissionService,
		storageFor:        storageFor,
		defaultTTL:        defaultTTL,
		options:           options,
	}
}

// RegisterRoutes registers the API routes
func (hc *HandoffController) RegisterRoutes(r *gin.RouterGroup) {
	handoffs := r.Group("/handoffs")
	{
		handoffs.POST("/:key", hc.CreateHandoff)
		handoffs.GET("/:key", hc.GetHandoff)
		handoffs.POST("/:key/apply", hc.ApplyHandoff)
		handoffs.DELETE("/:key", hc.DismissHandoff)
	}
}

type createHandoffRequest struct {
	SourceApp model.AppKey    `json:"sourceApp" binding:"required,appkey"`
	Data      json.RawMessage `json:"data" binding:"required"`
	// TTLMs is capped at one day here and clamped further by the store.
	TTLMs int64 `json:"ttlMs" binding:"omitempty,gte=0,lte=86400000"`
	// BusinessID is only compared against the resolved business.
	BusinessID string `json:"businessId"`
}

type targetQuery struct {
	App       model.AppKey `form:"app" binding:"required,appkey"`
	SourceApp model.AppKey `form:"sourceApp" binding:"omitempty,appkey"`
}

type handoffView struct {
	Found   bool             `json:"found"`
	Valid   bool             `json:"valid"`
	Reason  handoff.Reason   `json:"reason,omitempty"`
	Notice  string           `json:"notice,omitempty"`
	Payload *handoff.Payload `json:"payload,omitempty"`
}

// CreateHandoff stores a draft produced by sourceApp for the resolved business.
func (hc *HandoffController) CreateHandoff(c *gin.Context) {
	if !requireSession(c) {
		return
	}
	var req createHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, util.BindingError(err))
		return
	}
	if len(req.Data) > handoff.MaxDataBytes {
		util.RespondWithError(c, obd_errors.Validation("", []util.FieldError{{Field: "data", Rule: "max"}}))
		return
	}

	tc, ok := hc.require(c, req.SourceApp, model.ActionEditDraft)
	if !ok {
		return
	}
	if err := service.EnsureSameTenant(tc, req.BusinessID); err != nil {
		util.RespondWithError(c, err)
		return
	}

	ttl := hc.defaultTTL
	if req.TTLMs > 0 {
		ttl = time.Duration(req.TTLMs) * time.Millisecond
	}
	payload := hc.store(c).Create(c.Request.Context(), c.Param("key"), handoff.Draft{
		SourceApp:  req.SourceApp,
		BusinessID: tc.BusinessID,
		Data:       req.Data,
	}, ttl)
	if payload == nil {
		util.RespondWithError(c, obd_errors.Validation("The suggestion could not be saved.", nil))
		return
	}
	util.RespondOK(c, http.StatusCreated, payload)
}

// GetHandoff shows a pending draft to the target app. The data is withheld
// unless the draft is valid for the resolved business.
func (hc *HandoffController) GetHandoff(c *gin.Context) {
	if !requireSession(c) {
		return
	}
	target, ok := hc.bindTarget(c)
	if !ok {
		return
	}
	tc, ok := hc.require(c, target.App, model.ActionView)
	if !ok {
		return
	}

	store := hc.store(c)
	payload := store.Read(c.Request.Context(), c.Param("key"))
	if payload == nil {
		util.RespondWithError(c, obd_errors.NotFound("No suggestion is waiting."))
		return
	}

	res := store.Validate(payload, hc.validateOptions(tc, target))
	view := handoffView{Found: true, Valid: res.OK, Reason: res.Reason}
	if res.OK {
		view.Payload = payload
	} else {
		view.Notice = handoff.Notice(res.Reason)
	}
	util.RespondOK(c, http.StatusOK, view)
}

// ApplyHandoff consumes a pending draft on explicit user action.
func (hc *HandoffController) ApplyHandoff(c *gin.Context) {
	if !requireSession(c) {
		return
	}
	target, ok := hc.bindTarget(c)
	if !ok {
		return
	}
	tc, ok := hc.require(c, target.App, model.ActionEditDraft)
	if !ok {
		return
	}

	result := hc.store(c).Apply(c.Request.Context(), c.Param("key"), hc.validateOptions(tc, target))
	if !result.Found {
		util.RespondWithError(c, obd_errors.NotFound("No suggestion is waiting."))
		return
	}
	util.RespondOK(c, http.StatusOK, result)
}

// DismissHandoff discards a pending draft.
func (hc *HandoffController) DismissHandoff(c *gin.Context) {
	if !requireSession(c) {
		return
	}
	target, ok := hc.bindTarget(c)
	if !ok {
		return
	}
	if _, ok := hc.require(c, target.App, model.ActionView); !ok {
		return
	}

	if err := hc.store(c).Dismiss(c.Request.Context(), c.Param("key")); err != nil {
		util.RespondWithError(c, obd_errors.Upstream(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (hc *HandoffController) bindTarget(c *gin.Context) (targetQuery, bool) {
	var q targetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		util.RespondWithError(c, util.BindingError(err))
		return q, false
	}
	return q, true
}

func (hc *HandoffController) require(c *gin.Context, app model.AppKey, action model.ActionKey) (*model.TenantContext, bool) {
	ctx := service.WithRequestID(c.Request.Context(), c.GetString(util.RequestIDKey))
	tc, err := hc.permissionService.Require(ctx, util.GetSession(c), util.BusinessSelector(c), app, action)
	if err != nil {
		util.RespondWithError(c, err)
		return nil, false
	}
	c.Set(util.TenantContextKey, tc)
	return tc, true
}

func (hc *HandoffController) store(c *gin.Context) *handoff.Store {
	var storage handoff.Storage
	if session := util.GetSession(c); session != nil && hc.storageFor != nil {
		storage = hc.storageFor(session.ID)
	}
	return handoff.NewStore(storage, hc.options...)
}

func (hc *HandoffController) validateOptions(tc *model.TenantContext, target targetQuery) handoff.ValidateOptions {
	return handoff.ValidateOptions{
		BusinessID:        tc.BusinessID,
		ExpectedSourceApp: target.SourceApp,
	}
}
