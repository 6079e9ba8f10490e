package postgres

import (
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
	"github.com/appealsdesk/appeals-registry/internal/group"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) group.RepositoryAPI {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) GetAll() ([]*rbacDatamodel.PermissionGroup, error) {
	var groups []*rbacDatamodel.PermissionGroup
	err := r.db.Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) GetByID(id int64) (*rbacDatamodel.PermissionGroup, error) {
	var g rbacDatamodel.PermissionGroup
	err := r.db.Where("id = ?", id).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) GetByName(name string) (*rbacDatamodel.PermissionGroup, error) {
	var g rbacDatamodel.PermissionGroup
	err := r.db.Where("name = ?", name).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) GetPermissions(groupID int64) ([]*rbacDatamodel.Permission, error) {
	var perms []*rbacDatamodel.Permission
	err := r.db.
		Joins("JOIN permission_group_items ON permission_group_items.permission_id = permissions.id").
		Where("permission_group_items.group_id = ?", groupID).
		Order("permissions.code ASC").
		Find(&perms).Error
	return perms, err
}

func (r *GroupRepository) GetPermissionsForGroups(groupIDs []int64) (map[int64][]*rbacDatamodel.Permission, error) {
	result := make(map[int64][]*rbacDatamodel.Permission)
	if len(groupIDs) == 0 {
		return result, nil
	}

	type groupPermRow struct {
		rbacDatamodel.Permission
		GroupID int64 `gorm:"column:group_id"`
	}

	var rows []groupPermRow
	err := r.db.Model(&rbacDatamodel.Permission{}).
		Select("permissions.*, permission_group_items.group_id").
		Joins("JOIN permission_group_items ON permission_group_items.permission_id = permissions.id").
		Where("permission_group_items.group_id IN ?", groupIDs).
		Order("permissions.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		perm := rows[i].Permission
		result[rows[i].GroupID] = append(result[rows[i].GroupID], &perm)
	}
	return result, nil
}

func (r *GroupRepository) CreateWithPermissions(g *rbacDatamodel.PermissionGroup, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			item := &rbacDatamodel.PermissionGroupItem{
				GroupID:      g.ID,
				PermissionID: permID,
			}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GroupRepository) Update(g *rbacDatamodel.PermissionGroup) error {
	return r.db.Save(g).Error
}

func (r *GroupRepository) ReplacePermissions(groupID int64, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&rbacDatamodel.PermissionGroupItem{}).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			item := &rbacDatamodel.PermissionGroupItem{
				GroupID:      groupID,
				PermissionID: permID,
			}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCascade removes the group and its items. Direct grants copied onto
// users are left alone.
func (r *GroupRepository) DeleteCascade(groupID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&rbacDatamodel.PermissionGroupItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", groupID).Delete(&rbacDatamodel.PermissionGroup{}).Error
	})
}

func (r *GroupRepository) UserExists(userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

// ApplyPermissionsToUser inserts the missing user_permissions rows in one
// transaction and reports how many were actually added.
func (r *GroupRepository) ApplyPermissionsToUser(userID int64, permissionIDs []int64, grantedBy int64) (int, error) {
	applied := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, permID := range permissionIDs {
			var count int64
			if err := tx.Model(&rbacDatamodel.UserPermission{}).
				Where("user_id = ? AND permission_id = ?", userID, permID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			grant := &rbacDatamodel.UserPermission{
				UserID:       userID,
				PermissionID: permID,
				GrantedBy:    &grantedBy,
			}
			if err := tx.Create(grant).Error; err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}
