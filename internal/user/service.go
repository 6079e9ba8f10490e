package user

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/appealsdesk/appeals-registry/internal"
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
	"github.com/appealsdesk/appeals-registry/internal/core/events"
	"github.com/appealsdesk/appeals-registry/internal/group"
	"github.com/appealsdesk/appeals-registry/internal/permission"
	"github.com/appealsdesk/appeals-registry/internal/role"
)

type RepositoryAPI interface {
	GetAll() ([]*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByUsername(username string) (*userDatamodel.User, error)
	Create(u *userDatamodel.User) error
	Update(u *userDatamodel.User) error
	DeleteCascade(userID int64) error
	GetRoles(userID int64) ([]*rbacDatamodel.Role, error)
	GetRolesForUsers(userIDs []int64) (map[int64][]*rbacDatamodel.Role, error)
	GetRolePermissionCodes(userID int64) ([]string, error)
	GetDirectPermissionCodes(userID int64) ([]string, error)
	AssignRole(userID, roleID int64) (bool, error)
	RevokeRole(userID, roleID int64) error
	GrantPermission(userID, permissionID, grantedBy int64) (bool, error)
	RevokePermission(userID, permissionID int64) error
}

// RoleDirectory resolves roles for assignment gating.
type RoleDirectory interface {
	GetByID(id int64) (*role.Role, error)
}

// GroupApplier applies permission group templates during user creation.
type GroupApplier interface {
	ApplyToUser(ctx context.Context, actor internal.Actor, groupID, userID int64) (*group.ApplyGroupResponse, error)
}

type RegistryAPI interface {
	ResolveAssignable(codes []string, current []string) ([]*permission.Permission, error)
}

type Service struct {
	repo       RepositoryAPI
	roles      RoleDirectory
	groups     GroupApplier
	registry   RegistryAPI
	eventBus   *events.EventBus
	logger     *slog.Logger
	bcryptCost int
}

func NewService(
	repo RepositoryAPI,
	roles RoleDirectory,
	groups GroupApplier,
	registry RegistryAPI,
	eventBus *events.EventBus,
	logger *slog.Logger,
	bcryptCost int,
) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		roles:      roles,
		groups:     groups,
		registry:   registry,
		eventBus:   eventBus,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) GetAll() ([]*User, error) {
	dataUsers, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get users", "error", err)
		return nil, internal.NewInternalError("failed to get users", err)
	}

	userIDs := make([]int64, len(dataUsers))
	for i, u := range dataUsers {
		userIDs[i] = u.ID
	}
	rolesByUser, err := s.repo.GetRolesForUsers(userIDs)
	if err != nil {
		s.logger.Error("failed to get user roles", "error", err)
		return nil, internal.NewInternalError("failed to get users", err)
	}

	users := make([]*User, len(dataUsers))
	for i, u := range dataUsers {
		users[i] = FromDataModel(u, roleRefs(rolesByUser[u.ID]))
	}
	return users, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	dataUser, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if dataUser == nil {
		return nil, internal.ErrUserNotFound
	}

	roles, err := s.repo.GetRoles(id)
	if err != nil {
		s.logger.Error("failed to get user roles", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	return FromDataModel(dataUser, roleRefs(roles)), nil
}

// Create builds the user, then assigns roles, then applies groups, in that
// order. Group application copies permission sets, so it must run after the
// user row exists.
func (s *Service) Create(ctx context.Context, actor internal.Actor, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUsername(req.Username)
	if err != nil {
		s.logger.Error("failed to check username", "username", req.Username, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}
	if existing != nil {
		return nil, internal.ErrDuplicateUsername
	}

	if (req.IsAdmin || req.IsSuperAdmin || req.Rank > 1) && actor.EffectiveRank() < permission.RankSuperAdmin {
		return nil, internal.ErrInsufficientRank
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	dataUser := &userDatamodel.User{
		Username:     req.Username,
		Surname:      req.Surname,
		Name:         req.Name,
		PasswordHash: string(hash),
		SectionID:    req.SectionID,
		IsAdmin:      req.IsAdmin,
		IsSuperAdmin: req.IsSuperAdmin,
		Rank:         req.Rank,
		IsActive:     true,
	}
	if err := s.repo.Create(dataUser); err != nil {
		s.logger.Error("failed to create user", "username", req.Username, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	for _, roleID := range req.RoleIDs {
		if err := s.assignRoleChecked(actor, dataUser.ID, roleID); err != nil {
			return nil, err
		}
	}
	for _, groupID := range req.GroupIDs {
		if _, err := s.groups.ApplyToUser(ctx, actor, groupID, dataUser.ID); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.ActionUserCreated, dataUser.ID, actor.ID)
	s.logger.Info("user created", "user_id", dataUser.ID, "username", dataUser.Username, "actor_id", actor.ID)
	return s.GetByID(dataUser.ID)
}

func (s *Service) Update(ctx context.Context, actor internal.Actor, id int64, req *UpdateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dataUser, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update user", err)
	}
	if dataUser == nil {
		return nil, internal.ErrUserNotFound
	}

	if req.TouchesPrivileged() && actor.EffectiveRank() < permission.RankSuperAdmin {
		return nil, internal.ErrInsufficientRank
	}

	dataUser.Surname = req.Surname
	dataUser.Name = req.Name
	dataUser.SectionID = req.SectionID
	if req.IsAdmin != nil {
		dataUser.IsAdmin = *req.IsAdmin
	}
	if req.IsSuperAdmin != nil {
		dataUser.IsSuperAdmin = *req.IsSuperAdmin
	}
	// a super admin is always an admin
	if dataUser.IsSuperAdmin {
		dataUser.IsAdmin = true
	}
	if req.Rank != nil {
		dataUser.Rank = *req.Rank
	}
	if req.IsActive != nil {
		dataUser.IsActive = *req.IsActive
	}

	if err := s.repo.Update(dataUser); err != nil {
		s.logger.Error("failed to update user", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update user", err)
	}
	return s.GetByID(id)
}

func (s *Service) Delete(ctx context.Context, actor internal.Actor, id int64) error {
	if actor.ID == id {
		return internal.NewValidationError("cannot delete your own account", internal.ErrCodeValidationFailed)
	}

	dataUser, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "id", id, "error", err)
		return internal.NewInternalError("failed to delete user", err)
	}
	if dataUser == nil {
		return internal.ErrUserNotFound
	}
	if dataUser.IsSuperAdmin && actor.EffectiveRank() < permission.RankSuperAdmin {
		return internal.ErrInsufficientRank
	}

	if err := s.repo.DeleteCascade(id); err != nil {
		s.logger.Error("failed to delete user", "id", id, "error", err)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.publish(ctx, events.ActionUserDeleted, id, actor.ID)
	s.logger.Info("user deleted", "user_id", id, "username", dataUser.Username, "actor_id", actor.ID)
	return nil
}

// AssignRole is idempotent: assigning a role the user already holds changes
// nothing and succeeds.
func (s *Service) AssignRole(ctx context.Context, actor internal.Actor, userID, roleID int64) error {
	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "id", userID, "error", err)
		return internal.NewInternalError("failed to assign role", err)
	}
	if dataUser == nil {
		return internal.ErrUserNotFound
	}

	if err := s.assignRoleChecked(actor, userID, roleID); err != nil {
		return err
	}

	s.publish(ctx, events.ActionRoleAssigned, userID, actor.ID)
	return nil
}

func (s *Service) assignRoleChecked(actor internal.Actor, userID, roleID int64) error {
	r, err := s.roles.GetByID(roleID)
	if err != nil {
		return err
	}

	// the role's embedded permissions carry their categories; no registry
	// resolution here, so a role holding a since-disabled code stays
	// assignable and disabling is not retroactive
	if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(r.Permissions)) {
		return internal.ErrInsufficientRank
	}

	added, err := s.repo.AssignRole(userID, roleID)
	if err != nil {
		s.logger.Error("failed to assign role", "user_id", userID, "role_id", roleID, "error", err)
		return internal.NewInternalError("failed to assign role", err)
	}
	if added {
		s.logger.Info("role assigned", "user_id", userID, "role_id", roleID, "actor_id", actor.ID)
	}
	return nil
}

// RevokeRole is idempotent: revoking a role the user does not hold succeeds.
func (s *Service) RevokeRole(ctx context.Context, actor internal.Actor, userID, roleID int64) error {
	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "id", userID, "error", err)
		return internal.NewInternalError("failed to revoke role", err)
	}
	if dataUser == nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.RevokeRole(userID, roleID); err != nil {
		s.logger.Error("failed to revoke role", "user_id", userID, "role_id", roleID, "error", err)
		return internal.NewInternalError("failed to revoke role", err)
	}

	s.publish(ctx, events.ActionRoleRevoked, userID, actor.ID)
	s.logger.Info("role revoked", "user_id", userID, "role_id", roleID, "actor_id", actor.ID)
	return nil
}

// GrantPermission attaches a direct grant. Idempotent.
func (s *Service) GrantPermission(ctx context.Context, actor internal.Actor, userID int64, code string) error {
	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "id", userID, "error", err)
		return internal.NewInternalError("failed to grant permission", err)
	}
	if dataUser == nil {
		return internal.ErrUserNotFound
	}

	current, err := s.repo.GetDirectPermissionCodes(userID)
	if err != nil {
		s.logger.Error("failed to get direct permissions", "id", userID, "error", err)
		return internal.NewInternalError("failed to grant permission", err)
	}

	perms, err := s.registry.ResolveAssignable([]string{code}, current)
	if err != nil {
		return err
	}
	if !permission.CanAssign(actor.EffectiveRank(), permission.HasProtected(perms)) {
		return internal.ErrInsufficientRank
	}

	added, err := s.repo.GrantPermission(userID, perms[0].ID, actor.ID)
	if err != nil {
		s.logger.Error("failed to grant permission", "user_id", userID, "code", code, "error", err)
		return internal.NewInternalError("failed to grant permission", err)
	}
	if added {
		s.publish(ctx, events.ActionPermissionGrant, userID, actor.ID)
		s.logger.Info("permission granted", "user_id", userID, "code", code, "actor_id", actor.ID)
	}
	return nil
}

func (s *Service) RevokePermission(ctx context.Context, actor internal.Actor, userID int64, code string) error {
	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "id", userID, "error", err)
		return internal.NewInternalError("failed to revoke permission", err)
	}
	if dataUser == nil {
		return internal.ErrUserNotFound
	}

	current, err := s.repo.GetDirectPermissionCodes(userID)
	if err != nil {
		s.logger.Error("failed to get direct permissions", "id", userID, "error", err)
		return internal.NewInternalError("failed to revoke permission", err)
	}

	// revoking may legitimately target a disabled code still held
	perms, err := s.registry.ResolveAssignable([]string{code}, current)
	if err != nil {
		return err
	}

	if err := s.repo.RevokePermission(userID, perms[0].ID); err != nil {
		s.logger.Error("failed to revoke permission", "user_id", userID, "code", code, "error", err)
		return internal.NewInternalError("failed to revoke permission", err)
	}

	s.publish(ctx, events.ActionPermissionRevoke, userID, actor.ID)
	s.logger.Info("permission revoked", "user_id", userID, "code", code, "actor_id", actor.ID)
	return nil
}

// GetPermissions returns the user's flattened authorization state.
func (s *Service) GetPermissions(userID int64) (*PermissionView, error) {
	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "id", userID, "error", err)
		return nil, internal.NewInternalError("failed to get user permissions", err)
	}
	if dataUser == nil {
		return nil, internal.ErrUserNotFound
	}

	roles, err := s.repo.GetRoles(userID)
	if err != nil {
		s.logger.Error("failed to get user roles", "id", userID, "error", err)
		return nil, internal.NewInternalError("failed to get user permissions", err)
	}
	roleCodes, err := s.repo.GetRolePermissionCodes(userID)
	if err != nil {
		s.logger.Error("failed to get role permission codes", "id", userID, "error", err)
		return nil, internal.NewInternalError("failed to get user permissions", err)
	}
	direct, err := s.repo.GetDirectPermissionCodes(userID)
	if err != nil {
		s.logger.Error("failed to get direct permission codes", "id", userID, "error", err)
		return nil, internal.NewInternalError("failed to get user permissions", err)
	}

	if direct == nil {
		direct = []string{}
	}
	return &PermissionView{
		UserID:            dataUser.ID,
		IsAdmin:           dataUser.IsAdmin,
		IsSuperAdmin:      dataUser.IsSuperAdmin,
		Rank:              dataUser.Rank,
		Roles:             roleRefs(roles),
		DirectPermissions: direct,
		Effective:         permission.Effective([][]string{roleCodes}, direct),
	}, nil
}

func (s *Service) ResetPassword(ctx context.Context, actor internal.Actor, userID int64, req *ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "id", userID, "error", err)
		return internal.NewInternalError("failed to reset password", err)
	}
	if dataUser == nil {
		return internal.ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return internal.NewInternalError("failed to reset password", err)
	}

	dataUser.PasswordHash = string(hash)
	if err := s.repo.Update(dataUser); err != nil {
		s.logger.Error("failed to reset password", "id", userID, "error", err)
		return internal.NewInternalError("failed to reset password", err)
	}

	s.logger.Info("password reset", "user_id", userID, "actor_id", actor.ID)
	return nil
}

func (s *Service) publish(ctx context.Context, action string, userID, actorID int64) {
	if s.eventBus == nil {
		return
	}
	event := events.NewAuthzChangedEvent(action, "user", strconv.FormatInt(userID, 10), actorID)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish user event", "action", action, "user_id", userID, "error", err)
	}
}

func roleRefs(roles []*rbacDatamodel.Role) []RoleRef {
	refs := make([]RoleRef, len(roles))
	for i, r := range roles {
		refs[i] = RoleRef{ID: r.ID, Name: r.Name}
	}
	return refs
}
