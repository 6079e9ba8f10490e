package group

import (
	"time"

	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
)

// Group is a named permission template. Applying it copies its current
// permission set onto a user as direct grants; the user keeps no link back to
// the group, so later edits to the group never change what was granted.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsTemplate  bool      `json:"is_template"`
	IsActive    bool      `json:"is_active"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(g *rbacDatamodel.PermissionGroup, permCodes []string) *Group {
	if permCodes == nil {
		permCodes = []string{}
	}
	return &Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		IsTemplate:  g.IsTemplate,
		IsActive:    g.IsActive,
		Permissions: permCodes,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
