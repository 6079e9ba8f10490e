package postgres

import (
	"github.com/appealsdesk/appeals-registry/internal/appeal"
	appealDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/appeal"
	"gorm.io/gorm"
)

type AppealRepository struct {
	db *gorm.DB
}

func NewAppealRepository(db *gorm.DB) appeal.RepositoryAPI {
	return &AppealRepository{db: db}
}

func (r *AppealRepository) List(filter appeal.ListFilter) ([]*appealDatamodel.Appeal, int64, error) {
	query := r.db.Model(&appealDatamodel.Appeal{}).Where("is_deleted = ?", false)

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Section != nil {
		query = query.Where("section_id = ?", *filter.Section)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var appeals []*appealDatamodel.Appeal
	err := query.Order("created_at DESC").Find(&appeals).Error
	return appeals, total, err
}

func (r *AppealRepository) GetByID(id int64) (*appealDatamodel.Appeal, error) {
	var a appealDatamodel.Appeal
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AppealRepository) GetByRegNum(regNum string) (*appealDatamodel.Appeal, error) {
	var a appealDatamodel.Appeal
	err := r.db.Where("reg_num = ? AND is_deleted = ?", regNum, false).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AppealRepository) Create(a *appealDatamodel.Appeal) error {
	return r.db.Create(a).Error
}

func (r *AppealRepository) Update(a *appealDatamodel.Appeal) error {
	return r.db.Save(a).Error
}
