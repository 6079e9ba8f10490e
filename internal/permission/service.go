package permission

import (
	"log/slog"

	"github.com/appealsdesk/appeals-registry/internal"
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
)

type RepositoryAPI interface {
	GetAll() ([]*rbacDatamodel.Permission, error)
	GetByID(id int64) (*rbacDatamodel.Permission, error)
	GetByCode(code string) (*rbacDatamodel.Permission, error)
	GetByCodes(codes []string) ([]*rbacDatamodel.Permission, error)
	Create(perm *rbacDatamodel.Permission) error
	Update(perm *rbacDatamodel.Permission) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAll() ([]*Permission, error) {
	perms, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get permissions", "error", err)
		return nil, internal.NewInternalError("failed to get permissions", err)
	}
	return FromDataModelSlice(perms), nil
}

func (s *Service) GetByCategory(category Category) ([]*Permission, error) {
	all, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	var result []*Permission
	for _, p := range all {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result, nil
}

// GetGrouped returns the whole registry keyed by category, in the fixed
// category order.
func (s *Service) GetGrouped() (*GroupedPermissionsResponse, error) {
	all, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[Category][]*Permission)
	for _, p := range all {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	resp := &GroupedPermissionsResponse{}
	for _, cat := range Categories() {
		perms := byCategory[cat]
		if perms == nil {
			perms = []*Permission{}
		}
		resp.Categories = append(resp.Categories, CategoryGroup{
			Category:    cat,
			Protected:   cat.Protected(),
			Permissions: perms,
		})
	}
	return resp, nil
}

func (s *Service) GetByID(id int64) (*Permission, error) {
	perm, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get permission", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}
	return FromDataModel(perm), nil
}

func (s *Service) Create(req *CreatePermissionRequest) (*Permission, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCode(req.Code)
	if err != nil {
		s.logger.Error("failed to check permission code", "code", req.Code, "error", err)
		return nil, internal.NewInternalError("failed to create permission", err)
	}
	if existing != nil {
		return nil, internal.ErrDuplicatePermissionCode
	}

	perm := &rbacDatamodel.Permission{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		IsActive:    true,
	}
	if err := s.repo.Create(perm); err != nil {
		s.logger.Error("failed to create permission", "code", req.Code, "error", err)
		return nil, internal.NewInternalError("failed to create permission", err)
	}

	s.logger.Info("permission created", "code", perm.Code, "category", perm.Category)
	return FromDataModel(perm), nil
}

func (s *Service) Update(id int64, req *UpdatePermissionRequest) (*Permission, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	perm, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get permission", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}

	perm.Name = req.Name
	perm.Description = req.Description
	if err := s.repo.Update(perm); err != nil {
		s.logger.Error("failed to update permission", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission", err)
	}
	return FromDataModel(perm), nil
}

// SetActive toggles a permission. Disabling is not retroactive: holders keep
// the code, it only stops being assignable to new sets.
func (s *Service) SetActive(id int64, active bool) (*Permission, error) {
	perm, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get permission", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}

	perm.IsActive = active
	if err := s.repo.Update(perm); err != nil {
		s.logger.Error("failed to toggle permission", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update permission", err)
	}

	s.logger.Info("permission toggled", "code", perm.Code, "is_active", active)
	return FromDataModel(perm), nil
}

// ResolveAssignable validates a code set for assignment. Unknown codes are
// rejected outright. Inactive codes are rejected unless already present in
// current, so a set that contains a since-disabled code can still be
// re-submitted unchanged.
func (s *Service) ResolveAssignable(codes []string, current []string) ([]*Permission, error) {
	if len(codes) == 0 {
		return []*Permission{}, nil
	}

	found, err := s.repo.GetByCodes(codes)
	if err != nil {
		s.logger.Error("failed to resolve permission codes", "error", err)
		return nil, internal.NewInternalError("failed to resolve permission codes", err)
	}

	byCode := make(map[string]*rbacDatamodel.Permission, len(found))
	for _, p := range found {
		byCode[p.Code] = p
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, c := range current {
		currentSet[c] = struct{}{}
	}

	result := make([]*Permission, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		p, ok := byCode[code]
		if !ok {
			return nil, internal.NewValidationError("unknown permission code: "+code, internal.ErrCodeUnknownPermissionCode)
		}
		if !p.IsActive {
			if _, held := currentSet[code]; !held {
				return nil, internal.NewValidationError("permission is disabled and cannot be assigned: "+code, internal.ErrCodePermissionInactive)
			}
		}
		result = append(result, FromDataModel(p))
	}
	return result, nil
}
