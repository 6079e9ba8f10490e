package role

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/appealsdesk/appeals-registry/internal"
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	"github.com/appealsdesk/appeals-registry/internal/core/events"
	"github.com/appealsdesk/appeals-registry/internal/permission"
)

type RepositoryAPI interface {
	GetAll() ([]*rbacDatamodel.Role, error)
	GetByID(id int64) (*rbacDatamodel.Role, error)
	GetByName(name string) (*rbacDatamodel.Role, error)
	GetPermissions(roleID int64) ([]*rbacDatamodel.Permission, error)
	GetPermissionsForRoles(roleIDs []int64) (map[int64][]*rbacDatamodel.Permission, error)
	CreateWithPermissions(role *rbacDatamodel.Role, permissionIDs []int64) error
	Update(role *rbacDatamodel.Role) error
	ReplacePermissions(roleID int64, permissionIDs []int64) error
	DeleteCascade(roleID int64) error
}

// RegistryAPI is the slice of the permission registry the role service needs:
// code validation with the inactive-code carve-out.
type RegistryAPI interface {
	ResolveAssignable(codes []string, current []string) ([]*permission.Permission, error)
}

type Service struct {
	repo     RepositoryAPI
	registry RegistryAPI
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, registry RegistryAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) GetAll() ([]*Role, error) {
	dataRoles, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get roles", "error", err)
		return nil, internal.NewInternalError("failed to get roles", err)
	}

	roleIDs := make([]int64, len(dataRoles))
	for i, r := range dataRoles {
		roleIDs[i] = r.ID
	}
	permsByRole, err := s.repo.GetPermissionsForRoles(roleIDs)
	if err != nil {
		s.logger.Error("failed to get role permissions", "error", err)
		return nil, internal.NewInternalError("failed to get roles", err)
	}

	roles := make([]*Role, len(dataRoles))
	for i, r := range dataRoles {
		roles[i] = FromDataModel(r, permission.FromDataModelSlice(permsByRole[r.ID]))
	}
	return roles, nil
}

// GetAssignable filters the role list down to roles whose permission sets the
// actor's rank allows handing out.
func (s *Service) GetAssignable(actor internal.Actor) ([]*Role, error) {
	dataRoles, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get roles", "error", err)
		return nil, internal.NewInternalError("failed to get roles", err)
	}

	roleIDs := make([]int64, len(dataRoles))
	for i, r := range dataRoles {
		roleIDs[i] = r.ID
	}
	permsByRole, err := s.repo.GetPermissionsForRoles(roleIDs)
	if err != nil {
		s.logger.Error("failed to get role permissions", "error", err)
		return nil, internal.NewInternalError("failed to get roles", err)
	}

	var roles []*Role
	for _, r := range dataRoles {
		perms := permission.FromDataModelSlice(permsByRole[r.ID])
		if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(perms)) {
			continue
		}
		roles = append(roles, FromDataModel(r, perms))
	}
	if roles == nil {
		roles = []*Role{}
	}
	return roles, nil
}

func (s *Service) GetByID(id int64) (*Role, error) {
	dataRole, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get role", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if dataRole == nil {
		return nil, internal.ErrRoleNotFound
	}

	perms, err := s.repo.GetPermissions(id)
	if err != nil {
		s.logger.Error("failed to get role permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get role", err)
	}
	return FromDataModel(dataRole, permission.FromDataModelSlice(perms)), nil
}

func (s *Service) Create(ctx context.Context, actor internal.Actor, req *CreateRoleRequest) (*Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(req.Name)
	if err != nil {
		s.logger.Error("failed to check role name", "name", req.Name, "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}
	if existing != nil {
		return nil, internal.ErrDuplicateRoleName
	}

	perms, err := s.registry.ResolveAssignable(req.PermissionCodes, nil)
	if err != nil {
		return nil, err
	}
	if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(perms)) {
		return nil, internal.ErrInsufficientRank
	}

	dataRole := &rbacDatamodel.Role{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.CreateWithPermissions(dataRole, permIDs(perms)); err != nil {
		s.logger.Error("failed to create role", "name", req.Name, "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.publish(ctx, events.ActionRoleCreated, dataRole.ID, actor.ID)
	s.logger.Info("role created", "role_id", dataRole.ID, "name", dataRole.Name, "actor_id", actor.ID)
	return FromDataModel(dataRole, perms), nil
}

func (s *Service) Update(ctx context.Context, actor internal.Actor, id int64, req *UpdateRoleRequest) (*Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dataRole, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get role", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update role", err)
	}
	if dataRole == nil {
		return nil, internal.ErrRoleNotFound
	}
	if dataRole.IsSystem {
		return nil, internal.ErrSystemRoleImmutable
	}

	if req.Name != dataRole.Name {
		existing, err := s.repo.GetByName(req.Name)
		if err != nil {
			s.logger.Error("failed to check role name", "name", req.Name, "error", err)
			return nil, internal.NewInternalError("failed to update role", err)
		}
		if existing != nil {
			return nil, internal.ErrDuplicateRoleName
		}
	}

	dataRole.Name = req.Name
	dataRole.Description = req.Description
	if err := s.repo.Update(dataRole); err != nil {
		s.logger.Error("failed to update role", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update role", err)
	}

	perms, err := s.repo.GetPermissions(id)
	if err != nil {
		s.logger.Error("failed to get role permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update role", err)
	}

	s.publish(ctx, events.ActionRoleUpdated, id, actor.ID)
	return FromDataModel(dataRole, permission.FromDataModelSlice(perms)), nil
}

// SetPermissions replaces a role's permission set wholesale. Members pick up
// the new set on their next request; no user rows are touched.
func (s *Service) SetPermissions(ctx context.Context, actor internal.Actor, id int64, req *SetPermissionsRequest) (*Role, error) {
	dataRole, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get role", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to set role permissions", err)
	}
	if dataRole == nil {
		return nil, internal.ErrRoleNotFound
	}
	if dataRole.IsSystem {
		return nil, internal.ErrSystemRoleImmutable
	}

	currentPerms, err := s.repo.GetPermissions(id)
	if err != nil {
		s.logger.Error("failed to get role permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to set role permissions", err)
	}

	perms, err := s.registry.ResolveAssignable(req.PermissionCodes, codesOf(currentPerms))
	if err != nil {
		return nil, err
	}
	if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(perms)) {
		return nil, internal.ErrInsufficientRank
	}

	if err := s.repo.ReplacePermissions(id, permIDs(perms)); err != nil {
		s.logger.Error("failed to replace role permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to set role permissions", err)
	}

	s.publish(ctx, events.ActionRolePermsSet, id, actor.ID)
	s.logger.Info("role permissions replaced", "role_id", id, "count", len(perms), "actor_id", actor.ID)
	return FromDataModel(dataRole, perms), nil
}

// Delete removes the role and its memberships in one transaction. Users who
// held the role lose its permissions on their next request.
func (s *Service) Delete(ctx context.Context, actor internal.Actor, id int64) error {
	dataRole, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get role", "id", id, "error", err)
		return internal.NewInternalError("failed to delete role", err)
	}
	if dataRole == nil {
		return internal.ErrRoleNotFound
	}
	if dataRole.IsSystem {
		return internal.ErrSystemRoleImmutable
	}

	if err := s.repo.DeleteCascade(id); err != nil {
		s.logger.Error("failed to delete role", "id", id, "error", err)
		return internal.NewInternalError("failed to delete role", err)
	}

	s.publish(ctx, events.ActionRoleDeleted, id, actor.ID)
	s.logger.Info("role deleted", "role_id", id, "name", dataRole.Name, "actor_id", actor.ID)
	return nil
}

func (s *Service) publish(ctx context.Context, action string, roleID, actorID int64) {
	if s.eventBus == nil {
		return
	}
	event := events.NewAuthzChangedEvent(action, "role", strconv.FormatInt(roleID, 10), actorID)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish role event", "action", action, "role_id", roleID, "error", err)
	}
}

func codesOf(perms []*rbacDatamodel.Permission) []string {
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	return codes
}

func permIDs(perms []*permission.Permission) []int64 {
	ids := make([]int64, len(perms))
	for i, p := range perms {
		ids[i] = p.ID
	}
	return ids
}
