package group

import (
	"strings"

	"github.com/appealsdesk/appeals-registry/internal"
)

type CreateGroupRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	PermissionCodes []string `json:"permission_codes"`
}

func (r *CreateGroupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if len(r.Name) > 100 {
		return internal.NewValidationFieldError("name", "name must be at most 100 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *UpdateGroupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SetPermissionsRequest struct {
	PermissionCodes []string `json:"permission_codes"`
}

type ApplyGroupRequest struct {
	UserID int64 `json:"user_id"`
}

// ApplyGroupResponse reports how many grants the application actually added.
// Re-applying the same group yields zero.
type ApplyGroupResponse struct {
	UserID  int64 `json:"user_id"`
	Applied int   `json:"applied"`
	Skipped int   `json:"skipped"`
}

type GroupListResponse struct {
	Groups []*Group `json:"groups"`
}
