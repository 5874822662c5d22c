package testutil

import (
	"testing"

	"github.com/opsboard/report-api/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory SQLite database with every report table migrated.
// The pool is limited to one connection so all queries see the same memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = database.AutoMigrate(db)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// Create inserts records and fails the test on error
func Create[T any](t *testing.T, db *gorm.DB, records ...*T) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, db.Create(r).Error)
	}
}
