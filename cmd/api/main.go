package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsboard/report-api/docs"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/clock"
	"github.com/opsboard/report-api/internal/config"
	"github.com/opsboard/report-api/internal/database"
	"github.com/opsboard/report-api/internal/http/handler"
	"github.com/opsboard/report-api/internal/http/middleware"
	"github.com/opsboard/report-api/internal/http/router"
	"github.com/opsboard/report-api/internal/jobs"
	"github.com/opsboard/report-api/internal/logger"
	"github.com/opsboard/report-api/internal/metrics"
	"github.com/opsboard/report-api/internal/repository"
	"github.com/opsboard/report-api/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// @title Opsboard Report API
// @version 1.0
// @description Period management reports for the Opsboard operations CRM

// @contact.name API Support
// @contact.email support@opsboard.io

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system operations, paired with X-Organization-ID
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Development reads secrets from the environment, staging/production from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	reportMetrics := metrics.NewReportMetrics(prometheus.DefaultRegisterer)
	loader := repository.NewSnapshotLoader(db)
	reportService := service.NewReportService(loader, &cfg.Report, clock.Real{}, reportMetrics, log)

	authMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	reportHandler := handler.NewReportHandler(reportService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		prometheus.DefaultGatherer,
		authMiddleware,
		rateLimiter,
		reportHandler,
	)

	var scheduler *jobs.Scheduler
	if cfg.Digest.Enabled {
		scheduler, err = startDigest(cfg, reportService, reportMetrics, log)
		if err != nil {
			return err
		}
	} else {
		log.Info("Report digest disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

func startDigest(cfg *config.Config, reportService *service.ReportService, reportMetrics *metrics.ReportMetrics, log *zap.Logger) (*jobs.Scheduler, error) {
	loc := cfg.Report.Location()
	job, err := jobs.NewDigestJob(reportService, &cfg.Digest, loc, clock.Real{}, reportMetrics, log.Named("digest"))
	if err != nil {
		return nil, fmt.Errorf("failed to configure report digest: %w", err)
	}

	scheduler := jobs.NewScheduler(log, loc)
	if err := jobs.RegisterDigestJob(scheduler, job, cfg.Digest.Cron); err != nil {
		return nil, fmt.Errorf("failed to register report digest: %w", err)
	}
	scheduler.Start()

	log.Info("Scheduler started with report digest",
		zap.String("cron_expr", cfg.Digest.Cron),
		zap.Int("organizations", len(job.Organizations())),
		zap.Duration("timeout", cfg.Digest.TimeoutDuration()),
	)
	return scheduler, nil
}
