package audit

import "time"

// AuditLog is a write-once record of an authorization-relevant mutation.
type AuditLog struct {
	ID         int64     `gorm:"primaryKey"`
	Action     string    `gorm:"column:action;not null;index"`
	EntityType string    `gorm:"column:entity_type;not null;index"`
	EntityID   string    `gorm:"column:entity_id;not null"`
	ActorID    int64     `gorm:"column:actor_id;not null;index"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
