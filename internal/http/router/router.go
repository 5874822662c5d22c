package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/config"
	"github.com/opsboard/report-api/internal/database"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/http/handler"
	"github.com/opsboard/report-api/internal/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/opsboard/report-api/docs" // Import generated swagger docs
)

const readinessTimeout = 3 * time.Second

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	gatherer       prometheus.Gatherer
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	reportHandler  *handler.ReportHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	gatherer prometheus.Gatherer,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	reportHandler *handler.ReportHandler,
) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		gatherer:       gatherer,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		reportHandler:  reportHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, domain.HealthStatus{Status: "healthy"})
	})

	// Readiness probe with pool stats
	r.Get("/health/ready", rt.ready)

	if rt.cfg.Server.EnableMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)
		r.Use(rt.authMiddleware.RequirePermission(domain.PermissionReportsView))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/period", rt.reportHandler.GetPeriodReport)
			r.Post("/period", rt.reportHandler.PostPeriodReport)
		})
	})

	return r
}

func (rt *Router) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := database.HealthCheck(ctx, rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeHealth(w, http.StatusServiceUnavailable, domain.HealthStatus{
			Status: "unhealthy",
			Checks: map[string]string{"database": "unhealthy"},
		})
		return
	}

	status := domain.HealthStatus{
		Status: "healthy",
		Checks: map[string]string{"database": "healthy"},
	}
	if stats, err := database.Stats(rt.db); err == nil {
		status.Database = stats
	}
	writeHealth(w, http.StatusOK, status)
}

func writeHealth(w http.ResponseWriter, status int, body domain.HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
