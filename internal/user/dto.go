package user

import (
	"strings"

	"github.com/appealsdesk/appeals-registry/internal"
)

type CreateUserRequest struct {
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	Surname      string  `json:"surname"`
	Name         string  `json:"name"`
	SectionID    *int64  `json:"section_id"`
	IsAdmin      bool    `json:"is_admin"`
	IsSuperAdmin bool    `json:"is_super_admin"`
	Rank         int     `json:"rank"`
	RoleIDs      []int64 `json:"role_ids"`
	GroupIDs     []int64 `json:"group_ids"`
}

func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return internal.NewValidationFieldError("username", "username is required", internal.ErrCodeValidationFailed)
	}
	if len(r.Username) < 3 {
		return internal.NewValidationFieldError("username", "username must be at least 3 characters", internal.ErrCodeValidationFailed)
	}
	if len(r.Password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if r.Rank == 0 {
		r.Rank = 1
	}
	if r.Rank < 1 || r.Rank > 3 {
		return internal.NewValidationFieldError("rank", "rank must be between 1 and 3", internal.ErrCodeValidationFailed)
	}
	// a super admin is always an admin
	if r.IsSuperAdmin {
		r.IsAdmin = true
	}
	return nil
}

type UpdateUserRequest struct {
	Surname      string `json:"surname"`
	Name         string `json:"name"`
	SectionID    *int64 `json:"section_id"`
	IsAdmin      *bool  `json:"is_admin"`
	IsSuperAdmin *bool  `json:"is_super_admin"`
	Rank         *int   `json:"rank"`
	IsActive     *bool  `json:"is_active"`
}

func (r *UpdateUserRequest) Validate() error {
	if r.Rank != nil && (*r.Rank < 1 || *r.Rank > 3) {
		return internal.NewValidationFieldError("rank", "rank must be between 1 and 3", internal.ErrCodeValidationFailed)
	}
	return nil
}

// TouchesPrivileged reports whether the update changes admin flags or rank,
// which only top-rank actors may do.
func (r *UpdateUserRequest) TouchesPrivileged() bool {
	return r.IsAdmin != nil || r.IsSuperAdmin != nil || r.Rank != nil
}

type AssignRoleRequest struct {
	RoleID int64 `json:"role_id"`
}

type GrantPermissionRequest struct {
	PermissionCode string `json:"permission_code"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() error {
	if len(r.Password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UserListResponse struct {
	Users []*User `json:"users"`
}
