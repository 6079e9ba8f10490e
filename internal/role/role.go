package role

import (
	"time"

	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	"github.com/appealsdesk/appeals-registry/internal/permission"
)

// Role is a named permission set bound to users by reference: changing the
// set changes what every member can do on their next request.
//
// Permissions carries the full registry objects for display; PermissionCodes
// is the flat code list derived from them.
type Role struct {
	ID              int64                    `json:"id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description,omitempty"`
	IsSystem        bool                     `json:"is_system"`
	IsActive        bool                     `json:"is_active"`
	Permissions     []*permission.Permission `json:"permissions"`
	PermissionCodes []string                 `json:"permission_codes"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

func FromDataModel(r *rbacDatamodel.Role, perms []*permission.Permission) *Role {
	if perms == nil {
		perms = []*permission.Permission{}
	}
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	return &Role{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		IsSystem:        r.IsSystem,
		IsActive:        r.IsActive,
		Permissions:     perms,
		PermissionCodes: codes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
