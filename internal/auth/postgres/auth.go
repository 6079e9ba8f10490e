package postgres

import (
	"github.com/appealsdesk/appeals-registry/internal/auth"
	rbacDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/rbac"
	userDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/user"
	"github.com/appealsdesk/appeals-registry/internal/permission"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.UserRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentials(username string) (string, int64, bool, error) {
	var u userDatamodel.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		return "", 0, false, err
	}
	return u.PasswordHash, u.ID, u.IsActive, nil
}

// GetUserWithPermissions loads the user and flattens roles plus direct grants
// into the effective permission list. Inactive permission codes are kept;
// disabling a permission is not retroactive.
func (r *AuthRepository) GetUserWithPermissions(userID int64) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var roleNames []string
	err = r.db.Model(&rbacDatamodel.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &roleNames).Error
	if err != nil {
		return nil, err
	}

	var roleCodes []string
	err = r.db.Model(&rbacDatamodel.Permission{}).
		Select("DISTINCT permissions.code").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.code", &roleCodes).Error
	if err != nil {
		return nil, err
	}

	var directCodes []string
	err = r.db.Model(&rbacDatamodel.Permission{}).
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Pluck("permissions.code", &directCodes).Error
	if err != nil {
		return nil, err
	}

	if roleNames == nil {
		roleNames = []string{}
	}
	return &auth.User{
		ID:           u.ID,
		Username:     u.Username,
		Surname:      u.Surname,
		Name:         u.Name,
		SectionID:    u.SectionID,
		IsAdmin:      u.IsAdmin,
		IsSuperAdmin: u.IsSuperAdmin,
		Rank:         u.Rank,
		IsActive:     u.IsActive,
		Roles:        roleNames,
		Permissions:  permission.Effective([][]string{roleCodes}, directCodes),
	}, nil
}
