package report_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// now is the fixed evaluation instant shared by the engine tests
var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func marchPeriods(t *testing.T) report.PeriodSet {
	t.Helper()
	periods, err := report.ResolvePeriods(date(2024, 3, 1), date(2024, 3, 31), time.UTC)
	require.NoError(t, err)
	return periods
}

func workItem(name, stage string, lastUpdated time.Time) domain.WorkItem {
	w := domain.WorkItem{Name: name, Stage: stage, LastUpdatedAt: lastUpdated, CreatedAt: lastUpdated}
	w.ID = uuid.New()
	return w
}

func withChecklist(w domain.WorkItem, sections ...domain.ChecklistSection) domain.WorkItem {
	w.Checklist = datatypes.NewJSONType(sections)
	return w
}

func opportunity(company, stage string, status domain.OpportunityStatus) domain.SalesOpportunity {
	o := domain.SalesOpportunity{
		CompanyName: company,
		Stage:       stage,
		Status:      status,
		Temperature: domain.TemperatureWarm,
		CreatedAt:   date(2024, 1, 10),
	}
	o.ID = uuid.New()
	return o
}

func lostOpportunity(company string, lostAt time.Time, reason string) domain.SalesOpportunity {
	o := opportunity(company, "proposal", domain.OpportunityStatusLost)
	o.LostAt = ptr(lostAt)
	if reason != "" {
		r := &domain.LostReason{Label: reason}
		r.ID = uuid.New()
		o.LostReasonID = ptr(r.ID)
		o.LostReason = r
	}
	return o
}

func gainedOpportunity(company string, convertedAt time.Time) domain.SalesOpportunity {
	o := opportunity(company, "negotiation", domain.OpportunityStatusGained)
	o.ConvertedAt = ptr(convertedAt)
	return o
}

func commission(recipient string, status domain.CommissionStatus, amount string, createdAt time.Time) domain.CommissionRecord {
	c := domain.CommissionRecord{
		Status:        status,
		Amount:        decimal.RequireFromString(amount),
		RecipientName: recipient,
		CreatedAt:     createdAt,
	}
	c.ID = uuid.New()
	return c
}

func account(name string, status domain.AccountStatus, monthly string) domain.RecurringAccount {
	a := domain.RecurringAccount{CompanyName: name, Status: status}
	if monthly != "" {
		a.MonthlyValue = decimal.NewNullDecimal(decimal.RequireFromString(monthly))
	}
	a.ID = uuid.New()
	return a
}

func routine(title string) domain.RecurringRoutine {
	r := domain.RecurringRoutine{Title: title, IsActive: true}
	r.ID = uuid.New()
	return r
}

func task(accountID, routineID uuid.UUID, due time.Time, status domain.TaskStatus, completedAt *time.Time) domain.RecurringTask {
	tk := domain.RecurringTask{AccountID: accountID, RoutineID: routineID, DueDate: due, Status: status, CompletedAt: completedAt}
	tk.ID = uuid.New()
	return tk
}

func auditEntry(at time.Time, user, action string) domain.AuditEntry {
	e := domain.AuditEntry{
		PerformedAt: at,
		UserName:    user,
		Action:      action,
		EntityType:  "work_item",
		EntityName:  "Acme",
		Metadata:    datatypes.JSONMap{"field": "stage", "changes": map[string]any{"from": "setup"}},
	}
	e.ID = uuid.New()
	return e
}

func leadActivity(at time.Time, user, activityType string) domain.LeadActivity {
	a := domain.LeadActivity{
		OpportunityID: uuid.New(),
		CompanyName:   "Globex",
		ActivityType:  activityType,
		CreatedByName: user,
		CreatedAt:     at,
	}
	a.ID = uuid.New()
	return a
}
