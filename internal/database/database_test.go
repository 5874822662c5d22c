package database_test

import (
	"context"
	"testing"

	"github.com/opsboard/report-api/internal/database"
	"github.com/opsboard/report-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)

	assert.NoError(t, database.HealthCheck(context.Background(), db))

	stats, err := database.Stats(db)
	require.NoError(t, err)
	assert.LessOrEqual(t, stats.OpenConnections, 1)
	assert.GreaterOrEqual(t, stats.Idle, 0)
}

func TestAutoMigrate_CreatesReportTables(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, table := range []string{
		"work_items", "sales_opportunities", "lost_reasons", "commissions", "recipient_roles",
		"recurring_accounts", "recurring_routines", "recurring_tasks", "audit_logs", "lead_activities",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
