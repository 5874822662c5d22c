package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BaseModel carries the identity and tenant columns shared by every record
type BaseModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index;column:organization_id" json:"organizationId"`
}

// BeforeCreate assigns a random ID to records inserted without one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// MaxChecklistDepth bounds how deep nested checklist items are walked
const MaxChecklistDepth = 4

// ChecklistItem is a single checkable entry, optionally with sub-items
type ChecklistItem struct {
	Label     string          `json:"label"`
	Completed bool            `json:"completed"`
	Items     []ChecklistItem `json:"items,omitempty"`
}

// ChecklistSection groups checklist items under a title
type ChecklistSection struct {
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}

// WorkItem is a client moving through the delivery pipeline
type WorkItem struct {
	BaseModel
	Name          string                                `gorm:"type:varchar(200);not null" json:"name"`
	Stage         string                                `gorm:"type:varchar(50);not null;index" json:"stage"`
	LastUpdatedAt time.Time                             `gorm:"not null;column:last_updated_at" json:"lastUpdatedAt"`
	StartDate     *time.Time                            `gorm:"type:date;column:start_date" json:"startDate,omitempty"`
	Checklist     datatypes.JSONType[[]ChecklistSection] `gorm:"column:checklist" json:"checklist"`
	CreatedAt     time.Time                             `gorm:"not null" json:"createdAt"`
}

// TableName overrides the default table name
func (WorkItem) TableName() string { return "work_items" }

// Sections returns the decoded checklist, never nil
func (w *WorkItem) Sections() []ChecklistSection {
	sections := w.Checklist.Data()
	if sections == nil {
		return []ChecklistSection{}
	}
	return sections
}

// OpportunityStatus is the outcome state of a sales opportunity
type OpportunityStatus string

const (
	OpportunityStatusOpen   OpportunityStatus = "open"
	OpportunityStatusGained OpportunityStatus = "gained"
	OpportunityStatusLost   OpportunityStatus = "lost"
	OpportunityStatusFuture OpportunityStatus = "future"
)

// IsValid checks if the OpportunityStatus is a valid enum value
func (s OpportunityStatus) IsValid() bool {
	switch s {
	case OpportunityStatusOpen, OpportunityStatusGained, OpportunityStatusLost, OpportunityStatusFuture:
		return true
	}
	return false
}

// Temperature is the engagement tier of a lead
type Temperature string

const (
	TemperatureCold Temperature = "cold"
	TemperatureWarm Temperature = "warm"
	TemperatureHot  Temperature = "hot"
)

// LostReason is a label explaining why an opportunity was lost
type LostReason struct {
	BaseModel
	Label string `gorm:"type:varchar(200);not null" json:"label"`
}

// TableName overrides the default table name
func (LostReason) TableName() string { return "lost_reasons" }

// SalesOpportunity is a lead in the sales pipeline
type SalesOpportunity struct {
	BaseModel
	CompanyName    string            `gorm:"type:varchar(200);not null;column:company_name" json:"companyName"`
	Stage          string            `gorm:"type:varchar(50);not null;index" json:"stage"`
	Status         OpportunityStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Temperature    Temperature       `gorm:"type:varchar(20);not null;default:'cold'" json:"temperature"`
	NextAction     string            `gorm:"type:varchar(500);column:next_action" json:"nextAction,omitempty"`
	NextActionDate *time.Time        `gorm:"type:date;column:next_action_date" json:"nextActionDate,omitempty"`
	LastActivityAt *time.Time        `gorm:"column:last_activity_at" json:"lastActivityAt,omitempty"`
	ConvertedAt    *time.Time        `gorm:"column:converted_at" json:"convertedAt,omitempty"`
	LostAt         *time.Time        `gorm:"column:lost_at" json:"lostAt,omitempty"`
	LostReasonID   *uuid.UUID        `gorm:"type:uuid;column:lost_reason_id" json:"lostReasonId,omitempty"`
	LostReason     *LostReason       `gorm:"foreignKey:LostReasonID" json:"lostReason,omitempty"`
	CreatedAt      time.Time         `gorm:"not null" json:"createdAt"`
}

// TableName overrides the default table name
func (SalesOpportunity) TableName() string { return "sales_opportunities" }

// LostReasonLabel returns the loss label or empty string when no reason is linked
func (o *SalesOpportunity) LostReasonLabel() string {
	if o.LostReason == nil {
		return ""
	}
	return o.LostReason.Label
}

// CommissionStatus is the lifecycle state of a commission
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusApproved  CommissionStatus = "approved"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

// RecipientRole describes the role a commission recipient plays
type RecipientRole struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName overrides the default table name
func (RecipientRole) TableName() string { return "recipient_roles" }

// CommissionRecord is a commission owed to a recipient
type CommissionRecord struct {
	BaseModel
	Status          CommissionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Amount          decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"amount"`
	RecipientName   string           `gorm:"type:varchar(200);not null;column:recipient_name" json:"recipientName"`
	RecipientRoleID *uuid.UUID       `gorm:"type:uuid;column:recipient_role_id" json:"recipientRoleId,omitempty"`
	RecipientRole   *RecipientRole   `gorm:"foreignKey:RecipientRoleID" json:"recipientRole,omitempty"`
	ClientName      *string          `gorm:"type:varchar(200);column:client_name" json:"clientName,omitempty"`
	CreatedAt       time.Time        `gorm:"not null;index" json:"createdAt"`
}

// TableName overrides the default table name
func (CommissionRecord) TableName() string { return "commissions" }

// AccountStatus is the state of a recurring account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// RecurringAccount is a customer on a recurring service contract
type RecurringAccount struct {
	BaseModel
	CompanyName  string              `gorm:"type:varchar(200);not null;column:company_name" json:"companyName"`
	Status       AccountStatus       `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	MonthlyValue decimal.NullDecimal `gorm:"type:numeric(14,2);column:monthly_value" json:"monthlyValue"`
}

// TableName overrides the default table name
func (RecurringAccount) TableName() string { return "recurring_accounts" }

// TaskStatus is the completion state of a recurring task
type TaskStatus string

const (
	TaskStatusTodo    TaskStatus = "todo"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusSkipped TaskStatus = "skipped"
)

// RecurringTask is one scheduled execution of a routine for an account
type RecurringTask struct {
	BaseModel
	AccountID   uuid.UUID  `gorm:"type:uuid;not null;index;column:account_id" json:"accountId"`
	RoutineID   uuid.UUID  `gorm:"type:uuid;not null;index;column:routine_id" json:"routineId"`
	DueDate     time.Time  `gorm:"type:date;not null;index;column:due_date" json:"dueDate"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

// TableName overrides the default table name
func (RecurringTask) TableName() string { return "recurring_tasks" }

// RecurringRoutine is a template of work repeated for recurring accounts
type RecurringRoutine struct {
	BaseModel
	Title    string `gorm:"type:varchar(200);not null" json:"title"`
	IsActive bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// TableName overrides the default table name
func (RecurringRoutine) TableName() string { return "recurring_routines" }

// AuditEntry is an audit trail row
type AuditEntry struct {
	BaseModel
	PerformedAt time.Time         `gorm:"not null;index;column:performed_at" json:"performedAt"`
	UserName    string            `gorm:"type:varchar(200);column:user_name" json:"userName"`
	Action      string            `gorm:"type:varchar(50);not null" json:"action"`
	EntityType  string            `gorm:"type:varchar(50);not null;column:entity_type" json:"entityType"`
	EntityName  string            `gorm:"type:varchar(200);column:entity_name" json:"entityName"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
}

// TableName overrides the default table name
func (AuditEntry) TableName() string { return "audit_logs" }

// LeadActivity is an interaction logged against a sales opportunity
type LeadActivity struct {
	BaseModel
	OpportunityID uuid.UUID `gorm:"type:uuid;not null;index;column:opportunity_id" json:"opportunityId"`
	CompanyName   string    `gorm:"type:varchar(200);column:company_name" json:"companyName"`
	ActivityType  string    `gorm:"type:varchar(50);not null;column:activity_type" json:"activityType"`
	CreatedByName string    `gorm:"type:varchar(200);column:created_by_name" json:"createdByName"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt     time.Time `gorm:"not null;index" json:"createdAt"`
}

// TableName overrides the default table name
func (LeadActivity) TableName() string { return "lead_activities" }

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleSuperAdmin UserRoleType = "super_admin"
	RoleOrgAdmin   UserRoleType = "org_admin"
	RoleManager    UserRoleType = "manager"
	RoleSales      UserRoleType = "sales"
	RoleDelivery   UserRoleType = "delivery"
	RoleViewer     UserRoleType = "viewer"
	RoleAPIService UserRoleType = "api_service"
)

// PermissionType represents a specific permission
type PermissionType string

const (
	PermissionReportsView   PermissionType = "reports:view"
	PermissionReportsExport PermissionType = "reports:export"
	PermissionSystemAdmin   PermissionType = "system:admin"
)
