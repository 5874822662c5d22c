package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/clock"
	"github.com/opsboard/report-api/internal/config"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/logger"
	"github.com/opsboard/report-api/internal/metrics"
	"github.com/opsboard/report-api/internal/report"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SnapshotLoader reads the organization's records needed by a report.
// Every method is read-only and scoped to orgID.
type SnapshotLoader interface {
	WorkItems(ctx context.Context, orgID uuid.UUID) ([]domain.WorkItem, error)
	Opportunities(ctx context.Context, orgID uuid.UUID) ([]domain.SalesOpportunity, error)
	Commissions(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.CommissionRecord, error)
	RecurringAccounts(ctx context.Context, orgID uuid.UUID) ([]domain.RecurringAccount, error)
	RecurringTasks(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.RecurringTask, error)
	RecurringRoutines(ctx context.Context, orgID uuid.UUID) ([]domain.RecurringRoutine, error)
	AuditEntries(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.AuditEntry, error)
	LeadActivities(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.LeadActivity, error)
}

// ReportService generates period reports for an organization
type ReportService struct {
	loader       SnapshotLoader
	clock        clock.Clock
	options      report.Options
	maxRangeDays int
	metrics      *metrics.ReportMetrics
	logger       *zap.Logger
}

// NewReportService creates a report service. A nil clock uses the system clock
// and nil metrics disables instrumentation.
func NewReportService(
	loader SnapshotLoader,
	cfg *config.ReportConfig,
	clk clock.Clock,
	reportMetrics *metrics.ReportMetrics,
	logger *zap.Logger,
) *ReportService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &ReportService{
		loader:       loader,
		clock:        clk,
		options:      ReportOptions(cfg),
		maxRangeDays: cfg.MaxRangeDays,
		metrics:      reportMetrics,
		logger:       logger,
	}
}

// ReportOptions translates configuration into engine options
func ReportOptions(cfg *config.ReportConfig) report.Options {
	opts := report.DefaultOptions()
	opts.Location = cfg.Location()
	if cfg.FallbackMonthlyValue > 0 {
		opts.FallbackMonthlyValue = decimal.NewFromFloat(cfg.FallbackMonthlyValue)
	}
	if len(cfg.TerminalStages) > 0 {
		opts.TerminalStages = cfg.TerminalStages
	}
	if len(cfg.DeliveredStages) > 0 {
		opts.DeliveredStages = cfg.DeliveredStages
	}
	if len(cfg.WorkItemStageOrder) > 0 {
		opts.WorkItemStageOrder = cfg.WorkItemStageOrder
	}
	if len(cfg.OpportunityStageOrder) > 0 {
		opts.OpportunityStageOrder = cfg.OpportunityStageOrder
	}
	if cfg.StallThresholdDays > 0 {
		opts.StallThreshold = time.Duration(cfg.StallThresholdDays) * 24 * time.Hour
	}
	if cfg.HotInactivityThresholdDays > 0 {
		opts.HotInactivityThreshold = time.Duration(cfg.HotInactivityThresholdDays) * 24 * time.Hour
	}
	if cfg.PendingCommissionAlert > 0 {
		opts.PendingCommissionAlert = cfg.PendingCommissionAlert
	}
	if cfg.BottleneckAlertThreshold > 0 {
		opts.BottleneckAlertThreshold = cfg.BottleneckAlertThreshold
	}
	return opts
}

// Generate builds the structured report for the caller's organization
func (s *ReportService) Generate(ctx context.Context, req domain.ReportRequest) (*report.Report, error) {
	start := s.clock.Now()
	r, err := s.generate(ctx, req, domain.PermissionReportsView)
	s.observe(req.EffectiveFormat(), start, err)
	return r, err
}

// GenerateExport builds the report and reshapes it into export sections
func (s *ReportService) GenerateExport(ctx context.Context, req domain.ReportRequest) (*report.ExportDocument, error) {
	start := s.clock.Now()
	r, err := s.generate(ctx, req, domain.PermissionReportsExport)
	s.observe(domain.ReportFormatExportable, start, err)
	if err != nil {
		return nil, err
	}
	doc := report.ToExport(r)
	return &doc, nil
}

func (s *ReportService) generate(ctx context.Context, req domain.ReportRequest, permission domain.PermissionType) (*report.Report, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	orgID := req.OrganizationID
	if orgID == uuid.Nil {
		orgID = user.OrganizationID
	}
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization is required", ErrInvalidInput)
	}
	if !user.HasPermission(domain.PermissionReportsView) || !user.HasPermission(permission) || !user.CanAccessOrganization(orgID) {
		return nil, ErrPermissionDenied
	}

	periods, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	log := logger.WithReport(s.logger, orgID.String(),
		periods.Current.Start.Format(domain.DateLayout), periods.Current.End.Format(domain.DateLayout))

	snap, err := s.loadSnapshot(ctx, orgID, periods)
	if err != nil {
		log.Error("failed to load report snapshot", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}

	now := s.clock.Now()
	r := report.Build(snap, periods, now, s.options)

	log.Info("report generated",
		zap.Int("work_items", len(snap.WorkItems)),
		zap.Int("opportunities", len(snap.Opportunities)),
		zap.Int("events", r.Activities.Total),
		zap.Duration("duration", s.clock.Now().Sub(now)),
	)
	return r, nil
}

func (s *ReportService) resolve(req domain.ReportRequest) (report.PeriodSet, error) {
	loc := s.options.Location
	start, err := report.ParseDate(req.StartDate, loc)
	if err != nil {
		return report.PeriodSet{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	end, err := report.ParseDate(req.EndDate, loc)
	if err != nil {
		return report.PeriodSet{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	periods, err := report.ResolvePeriods(start, end, loc)
	if err != nil {
		return report.PeriodSet{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if s.maxRangeDays > 0 && periods.Current.Days() > s.maxRangeDays {
		return report.PeriodSet{}, fmt.Errorf("%w: %w: range of %d days exceeds the maximum of %d",
			ErrInvalidInput, report.ErrInvalidRange, periods.Current.Days(), s.maxRangeDays)
	}
	return periods, nil
}

// loadSnapshot issues the collection reads concurrently. The first failure
// cancels the remaining reads.
func (s *ReportService) loadSnapshot(ctx context.Context, orgID uuid.UUID, periods report.PeriodSet) (report.Snapshot, error) {
	snap := report.Snapshot{OrganizationID: orgID}
	current := periods.Current
	span := periods.Span()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.WorkItems, err = s.loader.WorkItems(gctx, orgID)
		return wrapLoad("work items", err)
	})
	g.Go(func() (err error) {
		snap.Opportunities, err = s.loader.Opportunities(gctx, orgID)
		return wrapLoad("opportunities", err)
	})
	g.Go(func() (err error) {
		snap.Commissions, err = s.loader.Commissions(gctx, orgID, current)
		return wrapLoad("commissions", err)
	})
	g.Go(func() (err error) {
		snap.RecurringAccounts, err = s.loader.RecurringAccounts(gctx, orgID)
		return wrapLoad("recurring accounts", err)
	})
	g.Go(func() (err error) {
		snap.RecurringTasks, err = s.loader.RecurringTasks(gctx, orgID, current)
		return wrapLoad("recurring tasks", err)
	})
	g.Go(func() (err error) {
		snap.RecurringRoutines, err = s.loader.RecurringRoutines(gctx, orgID)
		return wrapLoad("recurring routines", err)
	})
	g.Go(func() (err error) {
		snap.AuditEntries, err = s.loader.AuditEntries(gctx, orgID, span)
		return wrapLoad("audit entries", err)
	})
	g.Go(func() (err error) {
		snap.LeadActivities, err = s.loader.LeadActivities(gctx, orgID, span)
		return wrapLoad("lead activities", err)
	})

	if err := g.Wait(); err != nil {
		return report.Snapshot{}, err
	}
	return snap, nil
}

func wrapLoad(collection string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", collection, err)
	}
	return nil
}

func (s *ReportService) observe(format domain.ReportFormat, start time.Time, err error) {
	s.metrics.ObserveGeneration(Outcome(err), string(format), s.clock.Now().Sub(start))
}

// Outcome classifies a generation error into a metrics label
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return metrics.OutcomeForbidden
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeUnavailable
	}
}
