package permission

import (
	"time"

	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
)

// Category is a closed enumeration of permission groupings. Adding a new
// category is a compile-time visible change; protection status lives in
// Protected, not in scattered string comparisons.
type Category string

const (
	CategoryAppeals  Category = "appeals"
	CategoryUsers    Category = "users"
	CategoryCitizens Category = "citizens"
	CategoryReports  Category = "reports"
	CategoryAudit    Category = "audit"
	CategoryAdmin    Category = "admin"
)

func Categories() []Category {
	return []Category{
		CategoryAppeals,
		CategoryUsers,
		CategoryCitizens,
		CategoryReports,
		CategoryAudit,
		CategoryAdmin,
	}
}

func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryAppeals, CategoryUsers, CategoryCitizens, CategoryReports, CategoryAudit, CategoryAdmin:
		return Category(s), true
	}
	return "", false
}

// Protected reports whether assigning permissions of this category is
// restricted by actor rank (see evaluator.go).
func (c Category) Protected() bool {
	switch c {
	case CategoryAdmin, CategoryUsers, CategoryAudit:
		return true
	case CategoryAppeals, CategoryCitizens, CategoryReports:
		return false
	}
	return false
}

// Permission codes known at build time. The registry may grow beyond these at
// runtime; admin bypass works even for codes that do not exist yet.
const (
	CodeViewAppeals       = "view_appeals"
	CodeCreateAppeal      = "create_appeal"
	CodeEditAppeal        = "edit_appeal"
	CodeDeleteAppeal      = "delete_appeal"
	CodeViewAppealDetails = "view_appeal_details"
	CodeAssignAppeal      = "assign_appeal"
	CodeCompleteAppeal    = "complete_appeal"
	CodeExportAppeals     = "export_appeals"

	CodeViewUsers             = "view_users"
	CodeCreateUser            = "create_user"
	CodeEditUser              = "edit_user"
	CodeDeleteUser            = "delete_user"
	CodeManageUserRoles       = "manage_user_roles"
	CodeManageUserPermissions = "manage_user_permissions"
	CodeResetUserPassword     = "reset_user_password"

	CodeViewCitizens  = "view_citizens"
	CodeCreateCitizen = "create_citizen"
	CodeEditCitizen   = "edit_citizen"
	CodeDeleteCitizen = "delete_citizen"

	CodeViewReports  = "view_reports"
	CodeCreateReport = "create_report"
	CodeExportReport = "export_report"

	CodeViewAuditLogs   = "view_audit_logs"
	CodeExportAuditLogs = "export_audit_logs"

	CodeManageRoles            = "manage_roles"
	CodeManagePermissions      = "manage_permissions"
	CodeManagePermissionGroups = "manage_permission_groups"
	CodeAccessAdminPanel       = "access_admin_panel"
	CodeSystemConfiguration    = "system_configuration"
)

type Permission struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromDataModel(p *rbacDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    Category(p.Category),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func ToDataModel(p *Permission) *rbacDatamodel.Permission {
	return &rbacDatamodel.Permission{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func FromDataModelSlice(perms []*rbacDatamodel.Permission) []*Permission {
	result := make([]*Permission, len(perms))
	for i, p := range perms {
		result[i] = FromDataModel(p)
	}
	return result
}

// DefaultCatalog is the permission set seeded into a fresh database.
func DefaultCatalog() []Permission {
	return []Permission{
		{Code: CodeViewAppeals, Name: "View Appeals", Description: "View appeal list", Category: CategoryAppeals},
		{Code: CodeCreateAppeal, Name: "Create Appeal", Description: "Create new appeal", Category: CategoryAppeals},
		{Code: CodeEditAppeal, Name: "Edit Appeal", Description: "Edit appeal details", Category: CategoryAppeals},
		{Code: CodeDeleteAppeal, Name: "Delete Appeal", Description: "Soft-delete appeal", Category: CategoryAppeals},
		{Code: CodeViewAppealDetails, Name: "View Appeal Details", Description: "View detailed appeal information", Category: CategoryAppeals},
		{Code: CodeAssignAppeal, Name: "Assign Appeal", Description: "Assign appeal to executor", Category: CategoryAppeals},
		{Code: CodeCompleteAppeal, Name: "Complete Appeal", Description: "Mark appeal as completed", Category: CategoryAppeals},
		{Code: CodeExportAppeals, Name: "Export Appeals", Description: "Export appeals to file", Category: CategoryAppeals},

		{Code: CodeViewUsers, Name: "View Users", Description: "View user list", Category: CategoryUsers},
		{Code: CodeCreateUser, Name: "Create User", Description: "Create new user", Category: CategoryUsers},
		{Code: CodeEditUser, Name: "Edit User", Description: "Edit user details", Category: CategoryUsers},
		{Code: CodeDeleteUser, Name: "Delete User", Description: "Delete user", Category: CategoryUsers},
		{Code: CodeManageUserRoles, Name: "Manage User Roles", Description: "Assign or revoke user roles", Category: CategoryUsers},
		{Code: CodeManageUserPermissions, Name: "Manage User Permissions", Description: "Grant or revoke direct user permissions", Category: CategoryUsers},
		{Code: CodeResetUserPassword, Name: "Reset User Password", Description: "Reset user password", Category: CategoryUsers},

		{Code: CodeViewCitizens, Name: "View Citizens", Description: "View citizen list", Category: CategoryCitizens},
		{Code: CodeCreateCitizen, Name: "Create Citizen", Description: "Register new citizen", Category: CategoryCitizens},
		{Code: CodeEditCitizen, Name: "Edit Citizen", Description: "Edit citizen details", Category: CategoryCitizens},
		{Code: CodeDeleteCitizen, Name: "Delete Citizen", Description: "Delete citizen record", Category: CategoryCitizens},

		{Code: CodeViewReports, Name: "View Reports", Description: "View reports", Category: CategoryReports},
		{Code: CodeCreateReport, Name: "Create Report", Description: "Generate reports", Category: CategoryReports},
		{Code: CodeExportReport, Name: "Export Report", Description: "Export reports", Category: CategoryReports},

		{Code: CodeViewAuditLogs, Name: "View Audit Logs", Description: "View system audit logs", Category: CategoryAudit},
		{Code: CodeExportAuditLogs, Name: "Export Audit Logs", Description: "Export audit logs", Category: CategoryAudit},

		{Code: CodeManageRoles, Name: "Manage Roles", Description: "Create, edit, delete roles", Category: CategoryAdmin},
		{Code: CodeManagePermissions, Name: "Manage Permissions", Description: "Create and configure permissions", Category: CategoryAdmin},
		{Code: CodeManagePermissionGroups, Name: "Manage Permission Groups", Description: "Create and edit permission groups", Category: CategoryAdmin},
		{Code: CodeAccessAdminPanel, Name: "Access Admin Panel", Description: "Access system administration panel", Category: CategoryAdmin},
		{Code: CodeSystemConfiguration, Name: "System Configuration", Description: "Configure system settings", Category: CategoryAdmin},
	}
}

// abilities maps a semantic predicate name to its permission code. Convenience
// checks derive from this table so the predicate list cannot drift from the
// registry codes.
var abilities = map[string]string{
	"ViewAppeals":       CodeViewAppeals,
	"CreateAppeal":      CodeCreateAppeal,
	"EditAppeal":        CodeEditAppeal,
	"DeleteAppeal":      CodeDeleteAppeal,
	"ViewAppealDetails": CodeViewAppealDetails,
	"AssignAppeal":      CodeAssignAppeal,
	"CompleteAppeal":    CodeCompleteAppeal,
	"ExportAppeals":     CodeExportAppeals,

	"ViewUsers":             CodeViewUsers,
	"CreateUser":            CodeCreateUser,
	"EditUser":              CodeEditUser,
	"DeleteUser":            CodeDeleteUser,
	"ManageUserRoles":       CodeManageUserRoles,
	"ManageUserPermissions": CodeManageUserPermissions,
	"ResetUserPassword":     CodeResetUserPassword,

	"ViewCitizens": CodeViewCitizens,

	"ViewReports": CodeViewReports,

	"ViewAuditLogs": CodeViewAuditLogs,

	"ManageRoles":            CodeManageRoles,
	"ManagePermissions":      CodeManagePermissions,
	"ManagePermissionGroups": CodeManagePermissionGroups,
	"AccessAdminPanel":       CodeAccessAdminPanel,
}

// Ability resolves a semantic predicate name to its permission code.
func Ability(name string) (string, bool) {
	code, ok := abilities[name]
	return code, ok
}

// Abilities returns a copy of the semantic-name to code table.
func Abilities() map[string]string {
	out := make(map[string]string, len(abilities))
	for name, code := range abilities {
		out[name] = code
	}
	return out
}
