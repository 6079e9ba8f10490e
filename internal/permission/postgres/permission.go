package postgres

import (
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	"github.com/appealsdesk/appeals-registry/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetAll() ([]*rbacDatamodel.Permission, error) {
	var perms []*rbacDatamodel.Permission
	err := r.db.Order("category ASC, code ASC").Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) GetByID(id int64) (*rbacDatamodel.Permission, error) {
	var perm rbacDatamodel.Permission
	err := r.db.Where("id = ?", id).First(&perm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

func (r *PermissionRepository) GetByCode(code string) (*rbacDatamodel.Permission, error) {
	var perm rbacDatamodel.Permission
	err := r.db.Where("code = ?", code).First(&perm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

func (r *PermissionRepository) GetByCodes(codes []string) ([]*rbacDatamodel.Permission, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var perms []*rbacDatamodel.Permission
	err := r.db.Where("code IN ?", codes).Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) Create(perm *rbacDatamodel.Permission) error {
	return r.db.Create(perm).Error
}

func (r *PermissionRepository) Update(perm *rbacDatamodel.Permission) error {
	return r.db.Save(perm).Error
}
