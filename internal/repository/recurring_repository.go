package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"gorm.io/gorm"
)

// RecurringRepository reads recurring accounts, their routines and scheduled tasks
type RecurringRepository struct {
	db *gorm.DB
}

// NewRecurringRepository creates a new recurring repository
func NewRecurringRepository(db *gorm.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

// ListAccounts returns every recurring account of the organization
func (r *RecurringRepository) ListAccounts(ctx context.Context, organizationID uuid.UUID) ([]domain.RecurringAccount, error) {
	var accounts []domain.RecurringAccount
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID)
	if err := query.Order("company_name ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListRoutines returns every routine of the organization, active or not
func (r *RecurringRepository) ListRoutines(ctx context.Context, organizationID uuid.UUID) ([]domain.RecurringRoutine, error) {
	var routines []domain.RecurringRoutine
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID)
	if err := query.Order("title ASC, id ASC").Find(&routines).Error; err != nil {
		return nil, err
	}
	return routines, nil
}

// ListTasksDueIn returns tasks whose due date is a day of window
func (r *RecurringRepository) ListTasksDueIn(ctx context.Context, organizationID uuid.UUID, window report.Period) ([]domain.RecurringTask, error) {
	var tasks []domain.RecurringTask
	query := ApplyOrganizationFilter(r.db.WithContext(ctx), organizationID)
	query = ApplyDateWindow(query, "due_date", window)
	if err := query.Order("due_date ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
