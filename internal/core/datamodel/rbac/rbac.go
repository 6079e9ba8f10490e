package rbac

import "time"

// Permission is one grantable capability in the registry.
type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Category    string    `gorm:"column:category"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

type Role struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsSystem    bool      `gorm:"column:is_system;default:false"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission links roles to permissions (live-bound, by reference).
type RolePermission struct {
	ID           int64     `gorm:"primaryKey"`
	RoleID       int64     `gorm:"column:role_id;not null;index:idx_role_permissions_role_perm,unique"`
	PermissionID int64     `gorm:"column:permission_id;not null;index:idx_role_permissions_role_perm,unique"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

type UserRole struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index:idx_user_roles_user_role,unique"`
	RoleID    int64     `gorm:"column:role_id;not null;index:idx_user_roles_user_role,unique"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// UserPermission is a direct grant attached straight to a user, independent
// of role membership. Group applications materialize into these rows.
type UserPermission struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index:idx_user_permissions_user_perm,unique"`
	PermissionID int64     `gorm:"column:permission_id;not null;index:idx_user_permissions_user_perm,unique"`
	GrantedBy    *int64    `gorm:"column:granted_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}

// PermissionGroup is a named set of permissions applied to users by copy,
// not by reference. Later edits to the group never touch granted users.
type PermissionGroup struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsTemplate  bool      `gorm:"column:is_template;default:true"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (PermissionGroup) TableName() string {
	return "permission_groups"
}

type PermissionGroupItem struct {
	ID           int64     `gorm:"primaryKey"`
	GroupID      int64     `gorm:"column:group_id;not null;index:idx_group_items_group_perm,unique"`
	PermissionID int64     `gorm:"column:permission_id;not null;index:idx_group_items_group_perm,unique"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (PermissionGroupItem) TableName() string {
	return "permission_group_items"
}
