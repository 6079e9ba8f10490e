package postgres

import (
	"github.com/appealsdesk/appeals-registry/internal/audit"
	auditDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(log *auditDatamodel.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *AuditRepository) List(filter audit.ListFilter) ([]*auditDatamodel.AuditLog, int64, error) {
	query := r.db.Model(&auditDatamodel.AuditLog{})

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var logs []*auditDatamodel.AuditLog
	err := query.Order("occurred_at DESC").Find(&logs).Error
	return logs, total, err
}
