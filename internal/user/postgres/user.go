package postgres

import (
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
	"github.com/appealsdesk/appeals-registry/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) Update(u *userDatamodel.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) DeleteCascade(userID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&rbacDatamodel.UserPermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&userDatamodel.User{}).Error
	})
}

func (r *UserRepository) GetRoles(userID int64) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.db.
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *UserRepository) GetRolesForUsers(userIDs []int64) (map[int64][]*rbacDatamodel.Role, error) {
	result := make(map[int64][]*rbacDatamodel.Role)
	if len(userIDs) == 0 {
		return result, nil
	}

	type userRoleRow struct {
		rbacDatamodel.Role
		UserID int64 `gorm:"column:user_id"`
	}

	var rows []userRoleRow
	err := r.db.Model(&rbacDatamodel.Role{}).
		Select("roles.*, user_roles.user_id").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id IN ?", userIDs).
		Order("roles.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		role := rows[i].Role
		result[rows[i].UserID] = append(result[rows[i].UserID], &role)
	}
	return result, nil
}

// GetRolePermissionCodes flattens every permission code the user holds
// through role membership. Inactive permissions are included: disabling is
// not retroactive.
func (r *UserRepository) GetRolePermissionCodes(userID int64) ([]string, error) {
	var codes []string
	err := r.db.Model(&rbacDatamodel.Permission{}).
		Select("DISTINCT permissions.code").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.code", &codes).Error
	return codes, err
}

func (r *UserRepository) GetDirectPermissionCodes(userID int64) ([]string, error) {
	var codes []string
	err := r.db.Model(&rbacDatamodel.Permission{}).
		Select("permissions.code").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Pluck("permissions.code", &codes).Error
	return codes, err
}

// AssignRole inserts the membership if missing and reports whether a row was
// added.
func (r *UserRepository) AssignRole(userID, roleID int64) (bool, error) {
	var count int64
	if err := r.db.Model(&rbacDatamodel.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	membership := &rbacDatamodel.UserRole{UserID: userID, RoleID: roleID}
	if err := r.db.Create(membership).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) RevokeRole(userID, roleID int64) error {
	return r.db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&rbacDatamodel.UserRole{}).Error
}

func (r *UserRepository) GrantPermission(userID, permissionID, grantedBy int64) (bool, error) {
	var count int64
	if err := r.db.Model(&rbacDatamodel.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	grant := &rbacDatamodel.UserPermission{
		UserID:       userID,
		PermissionID: permissionID,
		GrantedBy:    &grantedBy,
	}
	if err := r.db.Create(grant).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) RevokePermission(userID, permissionID int64) error {
	return r.db.Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&rbacDatamodel.UserPermission{}).Error
}
