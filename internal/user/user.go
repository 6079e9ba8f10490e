package user

import (
	"time"

	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Surname      string    `json:"surname,omitempty"`
	Name         string    `json:"name,omitempty"`
	SectionID    *int64    `json:"section_id,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	Rank         int       `json:"rank"`
	IsActive     bool      `json:"is_active"`
	Roles        []RoleRef `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleRef is the role as seen from a user profile: enough to render and to
// revoke, nothing more.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func FromDataModel(u *userDatamodel.User, roles []RoleRef) *User {
	if roles == nil {
		roles = []RoleRef{}
	}
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Surname:      u.Surname,
		Name:         u.Name,
		SectionID:    u.SectionID,
		IsAdmin:      u.IsAdmin,
		IsSuperAdmin: u.IsSuperAdmin,
		Rank:         u.Rank,
		IsActive:     u.IsActive,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// PermissionView is the flattened authorization state of one user: what the
// evaluator would see on their next request.
type PermissionView struct {
	UserID            int64     `json:"user_id"`
	IsAdmin           bool      `json:"is_admin"`
	IsSuperAdmin      bool      `json:"is_super_admin"`
	Rank              int       `json:"rank"`
	Roles             []RoleRef `json:"roles"`
	DirectPermissions []string  `json:"direct_permissions"`
	Effective         []string  `json:"effective_permissions"`
}
