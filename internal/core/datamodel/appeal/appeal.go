package appeal

import "time"

type Appeal struct {
	ID            int64      `gorm:"primaryKey"`
	// reg_num uniqueness is enforced by a partial index over non-deleted
	// rows, so soft deletion frees the number for reuse.
	RegNum        string     `gorm:"column:reg_num;index;not null"`
	CitizenName   string     `gorm:"column:citizen_name;not null"`
	Subject       string     `gorm:"column:subject;not null"`
	Content       string     `gorm:"column:content"`
	Status        string     `gorm:"column:status;default:registered"`
	SectionID     *int64     `gorm:"column:section_id"`
	ExecutorID    *int64     `gorm:"column:executor_id"`
	CreatedBy     int64      `gorm:"column:created_by;not null"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	IsDeleted     bool       `gorm:"column:is_deleted;default:false"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (Appeal) TableName() string {
	return "appeals"
}
