package permission

import (
	"strings"

	"github.com/appealsdesk/appeals-registry/internal"
)

type CreatePermissionRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (r *CreatePermissionRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)

	if r.Code == "" {
		return internal.NewValidationFieldError("code", "code is required", internal.ErrCodeValidationFailed)
	}
	if strings.ContainsAny(r.Code, " \t\n") {
		return internal.NewValidationFieldError("code", "code must not contain whitespace", internal.ErrCodeValidationFailed)
	}
	if r.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if _, ok := ParseCategory(r.Category); !ok {
		return internal.NewValidationFieldError("category", "unknown category: "+r.Category, internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdatePermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *UpdatePermissionRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type PermissionListResponse struct {
	Permissions []*Permission `json:"permissions"`
}

// AbilitiesResponse maps semantic predicate names (ViewAppeals, ManageRoles)
// to the permission codes the dashboard checks them against.
type AbilitiesResponse struct {
	Abilities map[string]string `json:"abilities"`
}

// GroupedPermissionsResponse keys permissions by category, in the fixed
// category order, for the admin panel.
type GroupedPermissionsResponse struct {
	Categories []CategoryGroup `json:"categories"`
}

type CategoryGroup struct {
	Category    Category      `json:"category"`
	Protected   bool          `json:"protected"`
	Permissions []*Permission `json:"permissions"`
}
