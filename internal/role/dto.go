package role

import (
	"strings"

	"github.com/appealsdesk/appeals-registry/internal"
)

type CreateRoleRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	PermissionCodes []string `json:"permission_codes"`
}

func (r *CreateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if len(r.Name) > 100 {
		return internal.NewValidationFieldError("name", "name must be at most 100 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *UpdateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SetPermissionsRequest struct {
	PermissionCodes []string `json:"permission_codes"`
}

type RoleListResponse struct {
	Roles []*Role `json:"roles"`
}
