package report

import (
	"time"

	"github.com/google/uuid"
)

// Report is the period report of one organization. It holds only copied or
// derived values and is safe to serialize or cache.
type Report struct {
	OrganizationID uuid.UUID          `json:"organizationId"`
	Periods        PeriodSet          `json:"periods"`
	GeneratedAt    time.Time          `json:"generatedAt"`
	Clients        ClientsSection     `json:"clients"`
	Leads          LeadsSection       `json:"leads"`
	Commissions    CommissionsSection `json:"commissions"`
	Recurring      RecurringSection   `json:"recurring"`
	Timeline       []TimelineDay      `json:"timeline"`
	Activities     ActivitiesSection  `json:"activities"`
	Trends         Trends             `json:"trends"`
	Insights       InsightsSection    `json:"insights"`
	Heatmap        []HeatmapDay       `json:"heatmap"`
}

// ClientsSection summarizes the delivery pipeline
type ClientsSection struct {
	Total     int                 `json:"total"`
	ByColumn  map[string]int      `json:"byColumn"`
	Stalled   []StalledItem       `json:"stalled"`
	Checklist []ChecklistProgress `json:"checklist"`
	Delivered int                 `json:"delivered"`
}

// LeadsSection summarizes the sales pipeline
type LeadsSection struct {
	Total              int             `json:"total"`
	ByStage            map[string]int  `json:"byStage"`
	ByStatus           map[string]int  `json:"byStatus"`
	ByTemperature      map[string]int  `json:"byTemperature"`
	NewInPeriod        int             `json:"newInPeriod"`
	Gained             int             `json:"gained"`
	Lost               int             `json:"lost"`
	ConversionRate     int             `json:"conversionRate"`
	LostReasons        map[string]int  `json:"lostReasons"`
	OverdueActions     []OverdueAction `json:"overdueActions"`
	HotWithoutActivity []NeglectedLead `json:"hotWithoutActivity"`
}

// AmountTotal is a count with its summed amount
type AmountTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// RecipientTotal is the commission total of one recipient
type RecipientTotal struct {
	Name   string  `json:"name"`
	Role   string  `json:"role"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// CommissionsSection summarizes commissions created in the current period
type CommissionsSection struct {
	Count         int                    `json:"count"`
	TotalAmount   float64                `json:"totalAmount"`
	ByStatus      map[string]AmountTotal `json:"byStatus"`
	ByRecipient   []RecipientTotal       `json:"byRecipient"`
	PendingCount  int                    `json:"pendingCount"`
	PendingAmount float64                `json:"pendingAmount"`
	PaidAmount    float64                `json:"paidAmount"`
}

// RecurringSection combines revenue projection and task compliance
type RecurringSection struct {
	Financial
	Compliance     Compliance `json:"compliance"`
	AtRiskAccounts int        `json:"atRiskAccounts"`
}

// ActorCount is the number of events performed by one actor
type ActorCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ActivitiesSection summarizes activity events of the current period
type ActivitiesSection struct {
	Total     int             `json:"total"`
	ByType    map[string]int  `json:"byType"`
	ByKind    map[string]int  `json:"byKind"`
	TopActors []ActorCount    `json:"topActors"`
	Recent    []ActivityEvent `json:"recent"`
}

// InsightsSection holds the heuristic findings of the report
type InsightsSection struct {
	OperationalBottleneck Bottleneck   `json:"operationalBottleneck"`
	SalesBottleneck       Bottleneck   `json:"salesBottleneck"`
	TopLossReasons        []LossReason `json:"topLossReasons"`
	Risks                 []Risk       `json:"risks"`
	FocusActions          []string     `json:"focusActions"`
}
