// router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acemetillidie0001/obd-premium-apps/controller"
	"github.com/acemetillidie0001/obd-premium-apps/metrics"
	"github.com/acemetillidie0001/obd-premium-apps/middleware"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/service"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

// Options wires the cross-cutting pieces. Metrics and Gatherer are optional.
type Options struct {
	Sessions          middleware.SessionProvider
	Limiter           middleware.Limiter
	RateLimitRequests int
	RateLimitDuration time.Duration
	Metrics           *metrics.Metrics
	Gatherer          prometheus.Gatherer
	// Health reports dependency problems; nil means always healthy.
	Health func() error
}

func SetupRouter(
	controllers *controller.Controllers,
	permissionService service.IPermissionService,
	opts Options,
) *gin.Engine {
	util.RegisterBindingValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(middleware.SessionAuth(opts.Sessions))
	if opts.Limiter != nil {
		router.Use(middleware.RateLimiter(opts.Limiter, opts.RateLimitRequests, opts.RateLimitDuration))
	}

	router.GET("/health", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(); err != nil {
				util.RespondWithError(c, err)
				return
			}
		}
		util.RespondOK(c, http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")

	controllers.Tenant.RegisterRoutes(api)
	controllers.Access.RegisterRoutes(api)
	controllers.Handoff.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api,
		middleware.RequirePermission(permissionService, model.AppTeamsUsers, model.ActionViewAudit))

	return router
}
