package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/clock"
	"github.com/opsboard/report-api/internal/config"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"github.com/opsboard/report-api/internal/repository"
	"github.com/opsboard/report-api/internal/service"
	"github.com/opsboard/report-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var _ service.SnapshotLoader = (*repository.SnapshotLoader)(nil)

var (
	acme   = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	globex = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func march() report.Period {
	return report.Period{Start: at(1, 0), End: at(31, 0)}
}

// seed writes one organization's records around March 2024, plus a record
// just outside the window for every windowed collection.
func seed(t *testing.T, db *gorm.DB, org uuid.UUID) {
	t.Helper()

	reason := &domain.LostReason{BaseModel: domain.BaseModel{OrganizationID: org}, Label: "price"}
	role := &domain.RecipientRole{BaseModel: domain.BaseModel{OrganizationID: org}, Name: "closer"}
	testutil.Create(t, db, reason)
	testutil.Create(t, db, role)

	testutil.Create(t, db,
		&domain.WorkItem{
			BaseModel:     domain.BaseModel{OrganizationID: org},
			Name:          "Client A",
			Stage:         "setup",
			LastUpdatedAt: at(1, 9),
			CreatedAt:     at(1, 9),
			Checklist: datatypes.NewJSONType([]domain.ChecklistSection{{
				Title: "Kickoff",
				Items: []domain.ChecklistItem{{Label: "call", Completed: true}, {Label: "access"}},
			}}),
		},
		&domain.WorkItem{
			BaseModel:     domain.BaseModel{OrganizationID: org},
			Name:          "Client B",
			Stage:         "delivered",
			LastUpdatedAt: at(10, 9),
			CreatedAt:     at(1, 9),
		},
	)

	testutil.Create(t, db,
		&domain.SalesOpportunity{
			BaseModel:    domain.BaseModel{OrganizationID: org},
			CompanyName:  "Lost Co",
			Stage:        "proposal",
			Status:       domain.OpportunityStatusLost,
			Temperature:  domain.TemperatureWarm,
			LostAt:       ptr(at(5, 10)),
			LostReasonID: &reason.ID,
			CreatedAt:    at(2, 10),
		},
		&domain.SalesOpportunity{
			BaseModel:   domain.BaseModel{OrganizationID: org},
			CompanyName: "Open Co",
			Stage:       "qualified",
			Status:      domain.OpportunityStatusOpen,
			Temperature: domain.TemperatureHot,
			CreatedAt:   at(3, 10),
		},
	)

	testutil.Create(t, db,
		&domain.CommissionRecord{
			BaseModel:       domain.BaseModel{OrganizationID: org},
			Status:          domain.CommissionStatusPending,
			Amount:          decimal.RequireFromString("150.50"),
			RecipientName:   "Bia",
			RecipientRoleID: &role.ID,
			CreatedAt:       at(31, 23),
		},
		&domain.CommissionRecord{
			BaseModel:     domain.BaseModel{OrganizationID: org},
			Status:        domain.CommissionStatusPaid,
			Amount:        decimal.NewFromInt(99),
			RecipientName: "Bia",
			CreatedAt:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	)

	account := &domain.RecurringAccount{
		BaseModel:    domain.BaseModel{OrganizationID: org},
		CompanyName:  "Recurring Co",
		Status:       domain.AccountStatusActive,
		MonthlyValue: decimal.NewNullDecimal(decimal.NewFromInt(1200)),
	}
	routine := &domain.RecurringRoutine{BaseModel: domain.BaseModel{OrganizationID: org}, Title: "Monthly review", IsActive: true}
	testutil.Create(t, db, account)
	testutil.Create(t, db, routine)
	testutil.Create(t, db,
		&domain.RecurringTask{
			BaseModel:   domain.BaseModel{OrganizationID: org},
			AccountID:   account.ID,
			RoutineID:   routine.ID,
			DueDate:     at(31, 0),
			Status:      domain.TaskStatusDone,
			CompletedAt: ptr(at(30, 15)),
		},
		&domain.RecurringTask{
			BaseModel: domain.BaseModel{OrganizationID: org},
			AccountID: account.ID,
			RoutineID: routine.ID,
			DueDate:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			Status:    domain.TaskStatusTodo,
		},
	)

	testutil.Create(t, db,
		&domain.AuditEntry{
			BaseModel:   domain.BaseModel{OrganizationID: org},
			PerformedAt: at(4, 11),
			UserName:    "ana",
			Action:      "update",
			EntityType:  "work_item",
			EntityName:  "Client A",
			Metadata:    datatypes.JSONMap{"field": "stage"},
		},
		&domain.AuditEntry{
			BaseModel:   domain.BaseModel{OrganizationID: org},
			PerformedAt: time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
			UserName:    "ana",
			Action:      "create",
			EntityType:  "work_item",
		},
	)

	testutil.Create(t, db, &domain.LeadActivity{
		BaseModel:     domain.BaseModel{OrganizationID: org},
		CompanyName:   "Open Co",
		ActivityType:  "call",
		CreatedByName: "bob",
		CreatedAt:     at(6, 14),
	})
}

func TestSnapshotLoader_ScopesByOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed(t, db, acme)
	seed(t, db, globex)
	loader := repository.NewSnapshotLoader(db)
	ctx := context.Background()

	items, err := loader.WorkItems(ctx, acme)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, acme, it.OrganizationID)
	}

	none, err := loader.WorkItems(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSnapshotLoader_Collections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed(t, db, acme)
	loader := repository.NewSnapshotLoader(db)
	ctx := context.Background()

	t.Run("work items keep their checklist", func(t *testing.T) {
		items, err := loader.WorkItems(ctx, acme)
		require.NoError(t, err)
		var withChecklist *domain.WorkItem
		for i := range items {
			if items[i].Name == "Client A" {
				withChecklist = &items[i]
			}
		}
		require.NotNil(t, withChecklist)
		sections := withChecklist.Sections()
		require.Len(t, sections, 1)
		assert.Len(t, sections[0].Items, 2)
	})

	t.Run("opportunities carry the loss reason", func(t *testing.T) {
		opps, err := loader.Opportunities(ctx, acme)
		require.NoError(t, err)
		require.Len(t, opps, 2)
		labels := map[string]string{}
		for _, o := range opps {
			labels[o.CompanyName] = o.LostReasonLabel()
		}
		assert.Equal(t, map[string]string{"Lost Co": "price", "Open Co": ""}, labels)
	})

	t.Run("commissions are limited to the window", func(t *testing.T) {
		comms, err := loader.Commissions(ctx, acme, march())
		require.NoError(t, err)
		require.Len(t, comms, 1)
		assert.True(t, comms[0].Amount.Equal(decimal.RequireFromString("150.50")))
		require.NotNil(t, comms[0].RecipientRole)
		assert.Equal(t, "closer", comms[0].RecipientRole.Name)
	})

	t.Run("tasks are limited to due dates in the window", func(t *testing.T) {
		tasks, err := loader.RecurringTasks(ctx, acme, march())
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskStatusDone, tasks[0].Status)
	})

	t.Run("accounts and routines are unbounded", func(t *testing.T) {
		accounts, err := loader.RecurringAccounts(ctx, acme)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.True(t, accounts[0].MonthlyValue.Valid)

		routines, err := loader.RecurringRoutines(ctx, acme)
		require.NoError(t, err)
		assert.Len(t, routines, 1)
	})

	t.Run("activity sources are limited to the window", func(t *testing.T) {
		audit, err := loader.AuditEntries(ctx, acme, march())
		require.NoError(t, err)
		require.Len(t, audit, 1)
		assert.Equal(t, "stage", audit[0].Metadata["field"])

		leads, err := loader.LeadActivities(ctx, acme, march())
		require.NoError(t, err)
		assert.Len(t, leads, 1)
	})
}

func TestSnapshotLoader_ThroughReportService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed(t, db, acme)
	seed(t, db, globex)

	cfg := &config.ReportConfig{Timezone: "UTC", MaxRangeDays: 366}
	svc := service.NewReportService(repository.NewSnapshotLoader(db), cfg,
		clock.NewFakeClock(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)), nil, zap.NewNop())
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:         uuid.New(),
		Roles:          []domain.UserRoleType{domain.RoleOrgAdmin},
		OrganizationID: acme,
	})

	r, err := svc.Generate(ctx, domain.ReportRequest{StartDate: "2024-03-01", EndDate: "2024-03-31"})

	require.NoError(t, err)
	assert.Equal(t, 2, r.Clients.Total)
	assert.Equal(t, 2, r.Leads.Total)
	assert.Equal(t, 1, r.Leads.Lost)
	assert.Equal(t, 1, r.Commissions.Count)
	assert.Equal(t, 150.5, r.Commissions.TotalAmount)
	assert.Equal(t, 1200.0, r.Recurring.MRR)
	assert.Equal(t, 100, r.Recurring.Compliance.Overall.Rate)
	assert.Equal(t, 2, r.Activities.Total)
}
