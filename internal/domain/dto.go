package domain

import "github.com/google/uuid"

// ReportFormat selects the shape of the report response
type ReportFormat string

const (
	ReportFormatStructured ReportFormat = "structured"
	ReportFormatExportable ReportFormat = "exportable"
)

// IsValid checks if the ReportFormat is a valid enum value
func (f ReportFormat) IsValid() bool {
	return f == ReportFormatStructured || f == ReportFormatExportable
}

// DateLayout is the wire format of report dates
const DateLayout = "2006-01-02"

// ReportRequest is the input of a period report generation
type ReportRequest struct {
	StartDate string       `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string       `json:"endDate" validate:"required,datetime=2006-01-02"`
	Format    ReportFormat `json:"format,omitempty" validate:"omitempty,oneof=structured exportable"`
	// OrganizationID is taken from the caller's identity, never from the body
	OrganizationID uuid.UUID `json:"-"`
}

// EffectiveFormat returns the requested format, defaulting to structured
func (r ReportRequest) EffectiveFormat() ReportFormat {
	if r.Format == "" {
		return ReportFormatStructured
	}
	return r.Format
}

// HealthStatus is the body of the health endpoints
type HealthStatus struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks,omitempty"`
	Database *DatabaseStats    `json:"database,omitempty"`
}

// DatabaseStats summarizes connection pool usage
type DatabaseStats struct {
	OpenConnections int `json:"openConnections"`
	InUse           int `json:"inUse"`
	Idle            int `json:"idle"`
}
