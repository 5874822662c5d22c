package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"gorm.io/gorm"
)

// AuditLogRepository handles audit log data access.
//
// Index recommendations:
// - CREATE INDEX idx_audit_logs_org_performed ON audit_logs(organization_id, performed_at);
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// ListInWindow returns audit entries performed inside window
func (r *AuditLogRepository) ListInWindow(ctx context.Context, organizationID uuid.UUID, window report.Period) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID)
	query = ApplyTimeWindow(query, "performed_at", window)
	if err := query.Order("performed_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LeadActivityRepository handles lead activity data access
type LeadActivityRepository struct {
	db *gorm.DB
}

// NewLeadActivityRepository creates a new lead activity repository
func NewLeadActivityRepository(db *gorm.DB) *LeadActivityRepository {
	return &LeadActivityRepository{db: db}
}

// ListInWindow returns lead activities created inside window
func (r *LeadActivityRepository) ListInWindow(ctx context.Context, organizationID uuid.UUID, window report.Period) ([]domain.LeadActivity, error) {
	var activities []domain.LeadActivity
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID)
	query = ApplyTimeWindow(query, "created_at", window)
	if err := query.Order("created_at ASC, id ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
