package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"gorm.io/gorm"
)

// SnapshotLoader serves the report's record collections from the database
type SnapshotLoader struct {
	workItems     *WorkItemRepository
	opportunities *OpportunityRepository
	commissions   *CommissionRepository
	recurring     *RecurringRepository
	auditLogs     *AuditLogRepository
	leadActivity  *LeadActivityRepository
}

// NewSnapshotLoader wires every report repository on top of db
func NewSnapshotLoader(db *gorm.DB) *SnapshotLoader {
	return &SnapshotLoader{
		workItems:     NewWorkItemRepository(db),
		opportunities: NewOpportunityRepository(db),
		commissions:   NewCommissionRepository(db),
		recurring:     NewRecurringRepository(db),
		auditLogs:     NewAuditLogRepository(db),
		leadActivity:  NewLeadActivityRepository(db),
	}
}

func (l *SnapshotLoader) WorkItems(ctx context.Context, orgID uuid.UUID) ([]domain.WorkItem, error) {
	return l.workItems.ListByOrganization(ctx, orgID)
}

func (l *SnapshotLoader) Opportunities(ctx context.Context, orgID uuid.UUID) ([]domain.SalesOpportunity, error) {
	return l.opportunities.ListByOrganization(ctx, orgID)
}

func (l *SnapshotLoader) Commissions(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.CommissionRecord, error) {
	return l.commissions.ListCreatedIn(ctx, orgID, window)
}

func (l *SnapshotLoader) RecurringAccounts(ctx context.Context, orgID uuid.UUID) ([]domain.RecurringAccount, error) {
	return l.recurring.ListAccounts(ctx, orgID)
}

func (l *SnapshotLoader) RecurringTasks(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.RecurringTask, error) {
	return l.recurring.ListTasksDueIn(ctx, orgID, window)
}

func (l *SnapshotLoader) RecurringRoutines(ctx context.Context, orgID uuid.UUID) ([]domain.RecurringRoutine, error) {
	return l.recurring.ListRoutines(ctx, orgID)
}

func (l *SnapshotLoader) AuditEntries(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.AuditEntry, error) {
	return l.auditLogs.ListInWindow(ctx, orgID, window)
}

func (l *SnapshotLoader) LeadActivities(ctx context.Context, orgID uuid.UUID, window report.Period) ([]domain.LeadActivity, error) {
	return l.leadActivity.ListInWindow(ctx, orgID, window)
}
