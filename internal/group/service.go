package group

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
	GetAll() ([]*rbacDatamodel.PermissionGroup, error)
	GetByID(id int64) (*rbacDatamodel.PermissionGroup, error)
	GetByName(name string) (*rbacDatamodel.PermissionGroup, error)
	GetPermissions(groupID int64) ([]*rbacDatamodel.Permission, error)
	GetPermissionsForGroups(groupIDs []int64) (map[int64][]*rbacDatamodel.Permission, error)
	CreateWithPermissions(g *rbacDatamodel.PermissionGroup, permissionIDs []int64) error
	Update(g *rbacDatamodel.PermissionGroup) error
	ReplacePermissions(groupID int64, permissionIDs []int64) error
	DeleteCascade(groupID int64) error
	UserExists(userID int64) (bool, error)
	ApplyPermissionsToUser(userID int64, permissionIDs []int64, grantedBy int64) (int, error)
}

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

func (s *Service) GetAll() ([]*Group, error) {
	dataGroups, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get permission groups", "error", err)
		return nil, internal.NewInternalError("failed to get permission groups", err)
	}

	groupIDs := make([]int64, len(dataGroups))
	for i, g := range dataGroups {
		groupIDs[i] = g.ID
	}
	permsByGroup, err := s.repo.GetPermissionsForGroups(groupIDs)
	if err != nil {
		s.logger.Error("failed to get group permissions", "error", err)
		return nil, internal.NewInternalError("failed to get permission groups", err)
	}

	groups := make([]*Group, len(dataGroups))
	for i, g := range dataGroups {
		groups[i] = FromDataModel(g, codesOf(permsByGroup[g.ID]))
	}
	return groups, nil
}

// GetAssignable filters groups down to those the actor's rank allows applying.
func (s *Service) GetAssignable(actor internal.Actor) ([]*Group, error) {
	dataGroups, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get permission groups", "error", err)
		return nil, internal.NewInternalError("failed to get permission groups", err)
	}

	groupIDs := make([]int64, len(dataGroups))
	for i, g := range dataGroups {
		groupIDs[i] = g.ID
	}
	permsByGroup, err := s.repo.GetPermissionsForGroups(groupIDs)
	if err != nil {
		s.logger.Error("failed to get group permissions", "error", err)
		return nil, internal.NewInternalError("failed to get permission groups", err)
	}

	var groups []*Group
	for _, g := range dataGroups {
		perms := permission.FromDataModelSlice(permsByGroup[g.ID])
		if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(perms)) {
			continue
		}
		groups = append(groups, FromDataModel(g, codesOf(permsByGroup[g.ID])))
	}
	if groups == nil {
		groups = []*Group{}
	}
	return groups, nil
}

func (s *Service) GetByID(id int64) (*Group, error) {
	dataGroup, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get permission group", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get permission group", err)
	}
	if dataGroup == nil {
		return nil, internal.ErrGroupNotFound
	}

	perms, err := s.repo.GetPermissions(id)
	if err != nil {
		s.logger.Error("failed to get group permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get permission group", err)
	}
	return FromDataModel(dataGroup, codesOf(perms)), nil
}

func (s *Service) Create(ctx context.Context, actor internal.Actor, req *CreateGroupRequest) (*Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(req.Name)
	if err != nil {
		s.logger.Error("failed to check group name", "name", req.Name, "error", err)
		return nil, internal.NewInternalError("failed to create permission group", err)
	}
	if existing != nil {
		return nil, internal.ErrDuplicateGroupName
	}

	perms, err := s.registry.ResolveAssignable(req.PermissionCodes, nil)
	if err != nil {
		return nil, err
	}
	if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(perms)) {
		return nil, internal.ErrInsufficientRank
	}

	dataGroup := &rbacDatamodel.PermissionGroup{
		Name:        req.Name,
		Description: req.Description,
		IsTemplate:  true,
		IsActive:    true,
	}
	if err := s.repo.CreateWithPermissions(dataGroup, permIDs(perms)); err != nil {
		s.logger.Error("failed to create permission group", "name", req.Name, "error", err)
		return nil, internal.NewInternalError("failed to create permission group", err)
	}

	s.publish(ctx, events.ActionGroupCreated, dataGroup.ID, actor.ID)
	s.logger.Info("permission group created", "group_id", dataGroup.ID, "name", dataGroup.Name, "actor_id", actor.ID)
	return FromDataModel(dataGroup, codesOfDomain(perms)), nil
}

func (s *Service) Update(ctx context.Context, actor internal.Actor, id int64, req *UpdateGroupRequest) (*Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dataGroup, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get permission group", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission group", err)
	}
	if dataGroup == nil {
		return nil, internal.ErrGroupNotFound
	}

	if req.Name != dataGroup.Name {
		existing, err := s.repo.GetByName(req.Name)
		if err != nil {
			s.logger.Error("failed to check group name", "name", req.Name, "error", err)
			return nil, internal.NewInternalError("failed to update permission group", err)
		}
		if existing != nil {
			return nil, internal.ErrDuplicateGroupName
		}
	}

	dataGroup.Name = req.Name
	dataGroup.Description = req.Description
	if err := s.repo.Update(dataGroup); err != nil {
		s.logger.Error("failed to update permission group", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission group", err)
	}

	perms, err := s.repo.GetPermissions(id)
	if err != nil {
		s.logger.Error("failed to get group permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission group", err)
	}

	s.publish(ctx, events.ActionGroupUpdated, id, actor.ID)
	return FromDataModel(dataGroup, codesOf(perms)), nil
}

// SetPermissions edits the template itself. Users the group was already
// applied to are never touched; they hold copies.
func (s *Service) SetPermissions(ctx context.Context, actor internal.Actor, id int64, req *SetPermissionsRequest) (*Group, error) {
	dataGroup, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get permission group", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to set group permissions", err)
	}
	if dataGroup == nil {
		return nil, internal.ErrGroupNotFound
	}

	currentPerms, err := s.repo.GetPermissions(id)
	if err != nil {
		s.logger.Error("failed to get group permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to set group permissions", err)
	}

	perms, err := s.registry.ResolveAssignable(req.PermissionCodes, codesOf(currentPerms))
	if err != nil {
		return nil, err
	}
	if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(perms)) {
		return nil, internal.ErrInsufficientRank
	}

	if err := s.repo.ReplacePermissions(id, permIDs(perms)); err != nil {
		s.logger.Error("failed to replace group permissions", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to set group permissions", err)
	}

	s.publish(ctx, events.ActionGroupUpdated, id, actor.ID)
	return FromDataModel(dataGroup, codesOfDomain(perms)), nil
}

// Delete removes the template and its items. Grants already copied onto users
// survive.
func (s *Service) Delete(ctx context.Context, actor internal.Actor, id int64) error {
	dataGroup, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get permission group", "id", id, "error", err)
		return internal.NewInternalError("failed to delete permission group", err)
	}
	if dataGroup == nil {
		return internal.ErrGroupNotFound
	}

	if err := s.repo.DeleteCascade(id); err != nil {
		s.logger.Error("failed to delete permission group", "id", id, "error", err)
		return internal.NewInternalError("failed to delete permission group", err)
	}

	s.publish(ctx, events.ActionGroupDeleted, id, actor.ID)
	s.logger.Info("permission group deleted", "group_id", id, "name", dataGroup.Name, "actor_id", actor.ID)
	return nil
}

// ApplyToUser snapshots the group's current permission set and copies it onto
// the user as direct grants. Grants the user already holds are skipped, so
// applying twice is a no-op.
func (s *Service) ApplyToUser(ctx context.Context, actor internal.Actor, groupID, userID int64) (*ApplyGroupResponse, error) {
	dataGroup, err := s.repo.GetByID(groupID)
	if err != nil {
		s.logger.Error("failed to get permission group", "id", groupID, "error", err)
		return nil, internal.NewInternalError("failed to apply permission group", err)
	}
	if dataGroup == nil {
		return nil, internal.ErrGroupNotFound
	}

	exists, err := s.repo.UserExists(userID)
	if err != nil {
		s.logger.Error("failed to check user", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to apply permission group", err)
	}
	if !exists {
		return nil, internal.ErrUserNotFound
	}

	perms, err := s.repo.GetPermissions(groupID)
	if err != nil {
		s.logger.Error("failed to get group permissions", "id", groupID, "error", err)
		return nil, internal.NewInternalError("failed to apply permission group", err)
	}
	domainPerms := permission.FromDataModelSlice(perms)
	if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(domainPerms)) {
		return nil, internal.ErrInsufficientRank
	}

	applied, err := s.repo.ApplyPermissionsToUser(userID, permIDsData(perms), actor.ID)
	if err != nil {
		s.logger.Error("failed to apply permission group", "group_id", groupID, "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to apply permission group", err)
	}

	s.publish(ctx, events.ActionGroupApplied, groupID, actor.ID)
	s.logger.Info("permission group applied",
		"group_id", groupID, "user_id", userID, "applied", applied, "skipped", len(perms)-applied, "actor_id", actor.ID)
	return &ApplyGroupResponse{
		UserID:  userID,
		Applied: applied,
		Skipped: len(perms) - applied,
	}, nil
}

func (s *Service) publish(ctx context.Context, action string, groupID, actorID int64) {
	if s.eventBus == nil {
		return
	}
	event := events.NewAuthzChangedEvent(action, "permission_group", strconv.FormatInt(groupID, 10), actorID)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish group event", "action", action, "group_id", groupID, "error", err)
	}
}

func codesOf(perms []*rbacDatamodel.Permission) []string {
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	return codes
}

func codesOfDomain(perms []*permission.Permission) []string {
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

func permIDsData(perms []*rbacDatamodel.Permission) []int64 {
	ids := make([]int64, len(perms))
	for i, p := range perms {
		ids[i] = p.ID
	}
	return ids
}
