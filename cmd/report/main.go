package main

import (
	"context"
	"fmt"
	"os"

	"github.com/opsboard/report-api/internal/clock"
	"github.com/opsboard/report-api/internal/config"
	"github.com/opsboard/report-api/internal/database"
	"github.com/opsboard/report-api/internal/logger"
	"github.com/opsboard/report-api/internal/repository"
	"github.com/opsboard/report-api/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "report",
		Short:        "Operator tooling for Opsboard period reports",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(NewGenerateCmd(openReportService))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openReportService wires the report service against the configured database.
// zap writes to stderr, leaving stdout for the report.
func openReportService(ctx context.Context) (ReportGenerator, func(), error) {
	cfg, err := config.LoadWithSecrets(ctx, zap.NewNop())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	svc := service.NewReportService(repository.NewSnapshotLoader(db), &cfg.Report, clock.Real{}, nil, log)
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = log.Sync()
	}
	return svc, cleanup, nil
}
