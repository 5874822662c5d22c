package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
)

// SystemUserID identifies requests authenticated with the API key or issued by internal jobs
var SystemUserID = uuid.Nil

// UserContext holds authenticated user information
type UserContext struct {
	UserID         uuid.UUID
	DisplayName    string
	Email          string
	Roles          []domain.UserRoleType
	OrganizationID uuid.UUID
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// SystemUser returns the user context used for API key requests and scheduled jobs
func SystemUser(organizationID uuid.UUID) *UserContext {
	return &UserContext{
		UserID:         SystemUserID,
		DisplayName:    "System",
		Email:          "system@opsboard.io",
		Roles:          []domain.UserRoleType{domain.RoleSuperAdmin, domain.RoleAPIService},
		OrganizationID: organizationID,
	}
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsSuperAdmin checks if user is a super admin (has access to all organizations)
func (u *UserContext) IsSuperAdmin() bool {
	return u.HasRole(domain.RoleSuperAdmin)
}

// CanAccessOrganization checks if user can read data of organizationID
func (u *UserContext) CanAccessOrganization(organizationID uuid.UUID) bool {
	if u.IsSuperAdmin() {
		return true
	}
	return organizationID != uuid.Nil && u.OrganizationID == organizationID
}

// HasPermission checks if user has a specific permission based on their roles
func (u *UserContext) HasPermission(permission domain.PermissionType) bool {
	if u.IsSuperAdmin() {
		return true
	}

	for _, role := range u.Roles {
		if hasRolePermission(role, permission) {
			return true
		}
	}
	return false
}

// Reports are restricted to admin-equivalent roles.
var rolePermissions = map[domain.UserRoleType][]domain.PermissionType{
	domain.RoleOrgAdmin: {domain.PermissionReportsView, domain.PermissionReportsExport, domain.PermissionSystemAdmin},
	domain.RoleManager:  {domain.PermissionReportsView, domain.PermissionReportsExport},
}

func hasRolePermission(role domain.UserRoleType, permission domain.PermissionType) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}
