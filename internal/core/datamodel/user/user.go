package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Surname      string    `gorm:"column:surname"`
	Name         string    `gorm:"column:name"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	SectionID    *int64    `gorm:"column:section_id"`
	IsAdmin      bool      `gorm:"column:is_admin;default:false"`
	IsSuperAdmin bool      `gorm:"column:is_super_admin;default:false"`
	Rank         int       `gorm:"column:rank;default:1"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
