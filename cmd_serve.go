package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acemetillidie0001/obd-premium-apps/audit"
	"github.com/acemetillidie0001/obd-premium-apps/config"
	"github.com/acemetillidie0001/obd-premium-apps/controller"
	"github.com/acemetillidie0001/obd-premium-apps/dao"
	"github.com/acemetillidie0001/obd-premium-apps/db"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/handoff"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/metrics"
	"github.com/acemetillidie0001/obd-premium-apps/middleware"
	"github.com/acemetillidie0001/obd-premium-apps/router"
	"github.com/acemetillidie0001/obd-premium-apps/service"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.GetConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prometheus registry for every collector the process exports
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize membership store
	store, err := openMembershipStore(cfg)
	if err != nil {
		return err
	}
	defer db.ClosePostgres()
	defer db.CloseNeo4j()
	guarded := service.NewBreakerStore("memberships", store, service.BreakerConfig{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Timeout:          cfg.Breaker.Timeout,
		OnStateChange:    m.BreakerChanged,
	})

	// Redis is optional; without it caches and rate limits stay in process
	if cfg.Redis.Addr != "" {
		if err := db.InitRedis(); err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer db.CloseRedis()
	}

	// Initialize EventBus
	eventBus := util.NewEventBus()
	eventBus.Start(ctx)
	defer eventBus.Stop()

	auditService := audit.NewService(openAuditRepository(cfg))
	audit.Subscribe(eventBus, auditService)
	m.Subscribe(eventBus)

	// Initialize services
	services, err := service.InitializeServices(guarded, util.NewCacheService(cfg.Tenant.CacheTTL), eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sessions, err := middleware.NewJWTSessions(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	handoffSessions := handoff.NewMemorySessions()
	storageFor := func(sessionID string) handoff.Storage {
		if db.RedisEnabled() {
			return handoff.NewRedisStorage(sessionID)
		}
		return handoffSessions.For(sessionID)
	}

	// Initialize controllers
	controllers := controller.InitializeControllers(services, auditService, controller.Options{
		Issuer:     sessions,
		SessionTTL: cfg.Auth.SessionTTL,
		Storage:    storageFor,
		HandoffTTL: cfg.Handoff.DefaultTTL,
		HandoffOptions: []handoff.Option{
			handoff.WithMaxTTL(cfg.Handoff.MaxTTL),
			handoff.WithObserver(m),
		},
	})

	// Set up Gin
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.SetupRouter(controllers, services.Permission, router.Options{
		Sessions:          sessions,
		Limiter:           middleware.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitDuration: cfg.RateLimit.Window,
		Metrics:           m,
		Gatherer:          reg,
		Health: func() error {
			if guarded.State() == "open" {
				return obd_errors.DBUnavailable(obd_errors.ErrDatabaseUnavailable)
			}
			return nil
		},
	})

	// Set up the server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Tenant.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}

func openMembershipStore(cfg *config.Configuration) (dao.MembershipStore, error) {
	switch cfg.Tenant.Store {
	case "neo4j":
		if err := db.InitNeo4j(); err != nil {
			return nil, fmt.Errorf("failed to initialize Neo4j: %w", err)
		}
		return dao.NewMembershipGraphDAO(db.Neo4jDriver), nil
	case "postgres", "":
		if err := db.InitPostgres(); err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		return dao.NewMembershipDAO(db.Postgres), nil
	default:
		return nil, fmt.Errorf("unknown tenant.store %q", cfg.Tenant.Store)
	}
}

func openAuditRepository(cfg *config.Configuration) audit.Repository {
	if cfg.Elasticsearch.URL == "" {
		logger.Warn("Elasticsearch not configured; access decisions are kept in memory")
		return audit.NewMemoryRepository(0)
	}
	repo, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL)
	if err != nil {
		logger.Error("Failed to create Elasticsearch client; access decisions are kept in memory", zap.Error(err))
		return audit.NewMemoryRepository(0)
	}
	return repo
}
