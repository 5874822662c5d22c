package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/clock"
	"github.com/opsboard/report-api/internal/config"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/metrics"
	"github.com/opsboard/report-api/internal/report"
	"github.com/opsboard/report-api/internal/service"
	"go.uber.org/zap"
)

// DigestJobName is the name of the report digest job
const DigestJobName = "report_digest"

// ReportGenerator builds a period report for the organization in ctx's user
type ReportGenerator interface {
	Generate(ctx context.Context, req domain.ReportRequest) (*report.Report, error)
}

// DigestResult counts the organizations processed by one digest run
type DigestResult struct {
	Succeeded int
	Failed    int
}

// DigestJob generates the trailing-window report for each configured
// organization and logs its headline numbers. Nothing is persisted.
type DigestJob struct {
	reports       ReportGenerator
	organizations []uuid.UUID
	windowDays    int
	timeout       time.Duration
	location      *time.Location
	clock         clock.Clock
	metrics       *metrics.ReportMetrics
	logger        *zap.Logger
}

// NewDigestJob validates the configured organization IDs
func NewDigestJob(
	reports ReportGenerator,
	cfg *config.DigestConfig,
	loc *time.Location,
	clk clock.Clock,
	reportMetrics *metrics.ReportMetrics,
	logger *zap.Logger,
) (*DigestJob, error) {
	orgs := make([]uuid.UUID, 0, len(cfg.OrganizationIDs))
	for _, raw := range cfg.OrganizationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid digest organization id %q: %w", raw, err)
		}
		orgs = append(orgs, id)
	}

	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &DigestJob{
		reports:       reports,
		organizations: orgs,
		windowDays:    windowDays,
		timeout:       timeout,
		location:      loc,
		clock:         clk,
		metrics:       reportMetrics,
		logger:        logger,
	}, nil
}

// Run executes the digest within the configured timeout. It is called by the scheduler.
func (j *DigestJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result := j.RunOnce(ctx)
	j.logger.Info("report digest finished",
		zap.Int("organizations", len(j.organizations)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)))
}

// RunOnce generates the digest for every organization in turn. A failing
// organization is logged and does not stop the others.
func (j *DigestJob) RunOnce(ctx context.Context) DigestResult {
	var result DigestResult
	start, end := j.Window()

	for _, org := range j.organizations {
		if ctx.Err() != nil {
			result.Failed++
			j.metrics.ObserveDigest(metrics.OutcomeUnavailable)
			continue
		}

		orgCtx := auth.WithUserContext(ctx, auth.SystemUser(org))
		r, err := j.reports.Generate(orgCtx, domain.ReportRequest{
			StartDate: start,
			EndDate:   end,
		})
		j.metrics.ObserveDigest(service.Outcome(err))
		if err != nil {
			result.Failed++
			j.logger.Error("report digest failed",
				zap.String("organization_id", org.String()),
				zap.Error(err))
			continue
		}

		result.Succeeded++
		j.logDigest(org, r)
	}
	return result
}

// Window returns the trailing window ending yesterday, as request dates
func (j *DigestJob) Window() (start, end string) {
	now := j.clock.Now().In(j.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.location)
	last := today.AddDate(0, 0, -1)
	first := last.AddDate(0, 0, -(j.windowDays - 1))
	return first.Format(domain.DateLayout), last.Format(domain.DateLayout)
}

// Organizations returns the organizations covered by the digest
func (j *DigestJob) Organizations() []uuid.UUID {
	return j.organizations
}

func (j *DigestJob) logDigest(org uuid.UUID, r *report.Report) {
	j.logger.Info("report digest",
		zap.String("organization_id", org.String()),
		zap.String("period_start", r.Periods.Current.Start.Format(domain.DateLayout)),
		zap.String("period_end", r.Periods.Current.End.Format(domain.DateLayout)),
		zap.Int("clients", r.Clients.Total),
		zap.Int("stalled_clients", len(r.Clients.Stalled)),
		zap.Int("leads", r.Leads.Total),
		zap.Int("leads_lost", r.Leads.Lost),
		zap.Float64("mrr", r.Recurring.MRR),
		zap.Int("compliance_rate", r.Recurring.Compliance.Overall.Rate),
		zap.Int("activities", r.Activities.Total),
		zap.String("operational_bottleneck", r.Insights.OperationalBottleneck.Stage),
		zap.String("sales_bottleneck", r.Insights.SalesBottleneck.Stage),
		zap.Strings("focus_actions", r.Insights.FocusActions),
	)
}

// RegisterDigestJob adds job to the scheduler under DigestJobName
func RegisterDigestJob(scheduler *Scheduler, job *DigestJob, cronExpr string) error {
	return scheduler.AddJob(DigestJobName, cronExpr, job.Run)
}
