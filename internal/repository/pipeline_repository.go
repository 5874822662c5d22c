package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"gorm.io/gorm"
)

// WorkItemRepository reads the delivery pipeline.
//
// Index recommendations:
// - CREATE INDEX idx_work_items_org_stage ON work_items(organization_id, stage);
type WorkItemRepository struct {
	db *gorm.DB
}

// NewWorkItemRepository creates a new work item repository
func NewWorkItemRepository(db *gorm.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// ListByOrganization returns every work item of the organization in its current state
func (r *WorkItemRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.WorkItem, error) {
	var items []domain.WorkItem
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID)
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// OpportunityRepository reads the sales pipeline
type OpportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository creates a new opportunity repository
func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

// ListByOrganization returns every opportunity of the organization with its loss reason
func (r *OpportunityRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.SalesOpportunity, error) {
	var opportunities []domain.SalesOpportunity
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID).
		Preload("LostReason")
	if err := query.Order("id ASC").Find(&opportunities).Error; err != nil {
		return nil, err
	}
	return opportunities, nil
}
