// controller/controllers.go
package controller

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acemetillidie0001/obd-premium-apps/audit"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/handoff"
	"github.com/acemetillidie0001/obd-premium-apps/service"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

type Controllers struct {
	Tenant  *TenantController
	Access  *AccessController
	Handoff *HandoffController
	Audit   *AuditController
}

// Options carries the collaborators that are not services.
type Options struct {
	Issuer         SessionIssuer
	SessionTTL     time.Duration
	Storage        StorageFactory
	HandoffTTL     time.Duration
	HandoffOptions []handoff.Option
}

func InitializeControllers(services *service.Services, auditService audit.Service, opts Options) *Controllers {
	return &Controllers{
		Tenant:  NewTenantController(services.Tenant, opts.Issuer, opts.SessionTTL),
		Access:  NewAccessController(services.Permission),
		Handoff: NewHandoffController(services.Permission, opts.Storage, opts.HandoffTTL, opts.HandoffOptions...),
		Audit:   NewAuditController(auditService),
	}
}

// requireSession answers 401 for anonymous callers.
func requireSession(c *gin.Context) bool {
	if !util.GetSession(c).Authenticated() {
		util.RespondWithError(c, obd_errors.Unauthorized(obd_errors.ErrUnauthenticated))
		return false
	}
	return true
}
