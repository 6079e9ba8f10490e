package postgres

import (
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	"github.com/appealsdesk/appeals-registry/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetAll() ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.db.Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetByID(id int64) (*rbacDatamodel.Role, error) {
	var dataRole rbacDatamodel.Role
	err := r.db.Where("id = ?", id).First(&dataRole).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dataRole, nil
}

func (r *RoleRepository) GetByName(name string) (*rbacDatamodel.Role, error) {
	var dataRole rbacDatamodel.Role
	err := r.db.Where("name = ?", name).First(&dataRole).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dataRole, nil
}

func (r *RoleRepository) GetPermissions(roleID int64) ([]*rbacDatamodel.Permission, error) {
	var perms []*rbacDatamodel.Permission
	err := r.db.
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.code ASC").
		Find(&perms).Error
	return perms, err
}

func (r *RoleRepository) GetPermissionsForRoles(roleIDs []int64) (map[int64][]*rbacDatamodel.Permission, error) {
	result := make(map[int64][]*rbacDatamodel.Permission)
	if len(roleIDs) == 0 {
		return result, nil
	}

	type rolePermRow struct {
		rbacDatamodel.Permission
		RoleID int64 `gorm:"column:role_id"`
	}

	var rows []rolePermRow
	err := r.db.Model(&rbacDatamodel.Permission{}).
		Select("permissions.*, role_permissions.role_id").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Order("permissions.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		perm := rows[i].Permission
		result[rows[i].RoleID] = append(result[rows[i].RoleID], &perm)
	}
	return result, nil
}

func (r *RoleRepository) CreateWithPermissions(dataRole *rbacDatamodel.Role, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dataRole).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			link := &rbacDatamodel.RolePermission{
				RoleID:       dataRole.ID,
				PermissionID: permID,
			}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RoleRepository) Update(dataRole *rbacDatamodel.Role) error {
	return r.db.Save(dataRole).Error
}

// ReplacePermissions swaps the role's permission set atomically. A reader
// either sees the old set or the new one, never a partial mix.
func (r *RoleRepository) ReplacePermissions(roleID int64, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			link := &rbacDatamodel.RolePermission{
				RoleID:       roleID,
				PermissionID: permID,
			}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCascade removes the role, its permission links and its user
// memberships in one transaction.
func (r *RoleRepository) DeleteCascade(roleID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", roleID).Delete(&rbacDatamodel.Role{}).Error
	})
}
