package repository

import (
	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/report"
	"gorm.io/gorm"
)

// ApplyOrganizationFilter scopes a query to one organization's rows.
// Every read issued for a report must go through it.
func ApplyOrganizationFilter(query *gorm.DB, organizationID uuid.UUID) *gorm.DB {
	return query.Where("organization_id = ?", organizationID)
}

// ApplyTimeWindow keeps rows whose timestamp column falls inside the period
func ApplyTimeWindow(query *gorm.DB, column string, window report.Period) *gorm.DB {
	from, to := window.Window()
	return query.Where(column+" >= ? AND "+column+" < ?", from.UTC(), to.UTC())
}

// ApplyDateWindow keeps rows whose date column falls on a calendar day of the period.
// Dates are compared as YYYY-MM-DD literals so the report location cannot shift them.
func ApplyDateWindow(query *gorm.DB, column string, window report.Period) *gorm.DB {
	first := window.Start.Format(dateLayout)
	afterLast := window.End.AddDate(0, 0, 1).Format(dateLayout)
	return query.Where(column+" >= ? AND "+column+" < ?", first, afterLast)
}

const dateLayout = "2006-01-02"
