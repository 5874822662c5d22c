package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"gorm.io/gorm"
)

// CommissionRepository handles commission data access.
//
// Index recommendations:
// - CREATE INDEX idx_commissions_org_created ON commissions(organization_id, created_at);
type CommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// ListCreatedIn returns commissions created inside window, with the recipient role
func (r *CommissionRepository) ListCreatedIn(ctx context.Context, organizationID uuid.UUID, window report.Period) ([]domain.CommissionRecord, error) {
	var commissions []domain.CommissionRecord
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID)
	query = ApplyTimeWindow(query, "created_at", window).Preload("RecipientRole")
	if err := query.Order("created_at ASC, id ASC").Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}
