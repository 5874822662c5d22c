package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"github.com/spf13/cobra"
)

// ReportGenerator is the slice of the report service the CLI drives
type ReportGenerator interface {
	Generate(ctx context.Context, req domain.ReportRequest) (*report.Report, error)
	GenerateExport(ctx context.Context, req domain.ReportRequest) (*report.ExportDocument, error)
}

// ServiceFactory opens a report generator and returns its cleanup
type ServiceFactory func(ctx context.Context) (ReportGenerator, func(), error)

type GenerateCmd struct {
	organization string
	from         string
	to           string
	format       string
	pretty       bool
	timeout      time.Duration
	open         ServiceFactory
}

func NewGenerateCmd(open ServiceFactory) *cobra.Command {
	gc := &GenerateCmd{open: open}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a period report for one organization and print it as JSON",
		Example: "  report generate --org 7b7c8c56-1f0e-4b8e-9d5a-3c2f1e0d9a8b --from 2024-03-01 --to 2024-03-31\n" +
			"  report generate --org <uuid> --from 2024-03-01 --to 2024-03-07 --format exportable --pretty",
		RunE: gc.run,
	}

	cmd.Flags().StringVar(&gc.organization, "org", "", "Organization ID")
	cmd.Flags().StringVar(&gc.from, "from", "", "First day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gc.to, "to", "", "Last day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gc.format, "format", string(domain.ReportFormatStructured), "structured or exportable")
	cmd.Flags().BoolVar(&gc.pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().DurationVar(&gc.timeout, "timeout", 2*time.Minute, "Maximum time to spend generating")

	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	orgID, err := uuid.Parse(gc.organization)
	if err != nil {
		return fmt.Errorf("invalid --org %q: %w", gc.organization, err)
	}
	format := domain.ReportFormat(gc.format)
	if !format.IsValid() {
		return fmt.Errorf("invalid --format %q: must be structured or exportable", gc.format)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), gc.timeout)
	defer cancel()

	svc, cleanup, err := gc.open(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx = auth.WithUserContext(ctx, auth.SystemUser(orgID))
	req := domain.ReportRequest{StartDate: gc.from, EndDate: gc.to, Format: format}

	var out any
	if format == domain.ReportFormatExportable {
		out, err = svc.GenerateExport(ctx, req)
	} else {
		out, err = svc.Generate(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if gc.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
