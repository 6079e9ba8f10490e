package appeal

import (
	"log/slog"
	"time"

	"github.com/appealsdesk/appeals-registry/internal"
	appealDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/appeal"
)

type RepositoryAPI interface {
	List(filter ListFilter) ([]*appealDatamodel.Appeal, int64, error)
	GetByID(id int64) (*appealDatamodel.Appeal, error)
	GetByRegNum(regNum string) (*appealDatamodel.Appeal, error)
	Create(a *appealDatamodel.Appeal) error
	Update(a *appealDatamodel.Appeal) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(filter ListFilter) (*AppealListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	appeals, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list appeals", "error", err)
		return nil, internal.NewInternalError("failed to list appeals", err)
	}

	return &AppealListResponse{
		Appeals: FromDataModelSlice(appeals),
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

func (s *Service) GetByID(id int64) (*Appeal, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get appeal", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get appeal", err)
	}
	if a == nil || a.IsDeleted {
		return nil, internal.ErrAppealNotFound
	}
	return FromDataModel(a), nil
}

func (s *Service) Create(actor internal.Actor, req *CreateAppealRequest) (*Appeal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByRegNum(req.RegNum)
	if err != nil {
		s.logger.Error("failed to check reg num", "reg_num", req.RegNum, "error", err)
		return nil, internal.NewInternalError("failed to create appeal", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("registration number already exists", internal.ErrCodeValidationFailed)
	}

	a := &appealDatamodel.Appeal{
		RegNum:      req.RegNum,
		CitizenName: req.CitizenName,
		Subject:     req.Subject,
		Content:     req.Content,
		Status:      string(StatusRegistered),
		SectionID:   req.SectionID,
		CreatedBy:   actor.ID,
	}
	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to create appeal", "reg_num", req.RegNum, "error", err)
		return nil, internal.NewInternalError("failed to create appeal", err)
	}

	s.logger.Info("appeal created", "appeal_id", a.ID, "reg_num", a.RegNum, "actor_id", actor.ID)
	return FromDataModel(a), nil
}

func (s *Service) Update(actor internal.Actor, id int64, req *UpdateAppealRequest) (*Appeal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get appeal", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update appeal", err)
	}
	if a == nil || a.IsDeleted {
		return nil, internal.ErrAppealNotFound
	}
	if Status(a.Status) == StatusCompleted {
		return nil, internal.ErrInvalidAppealStatus
	}

	a.CitizenName = req.CitizenName
	a.Subject = req.Subject
	a.Content = req.Content
	a.SectionID = req.SectionID
	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to update appeal", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update appeal", err)
	}
	return FromDataModel(a), nil
}

// Assign sets the executor and moves the appeal into progress.
func (s *Service) Assign(actor internal.Actor, id, executorID int64) (*Appeal, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get appeal", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to assign appeal", err)
	}
	if a == nil || a.IsDeleted {
		return nil, internal.ErrAppealNotFound
	}

	current := Status(a.Status)
	if current == StatusRegistered {
		if !current.CanTransitionTo(StatusInProgress) {
			return nil, internal.ErrInvalidAppealStatus
		}
		a.Status = string(StatusInProgress)
	} else if current == StatusCompleted {
		return nil, internal.ErrInvalidAppealStatus
	}

	a.ExecutorID = &executorID
	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to assign appeal", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to assign appeal", err)
	}

	s.logger.Info("appeal assigned", "appeal_id", id, "executor_id", executorID, "actor_id", actor.ID)
	return FromDataModel(a), nil
}

func (s *Service) Complete(actor internal.Actor, id int64) (*Appeal, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get appeal", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to complete appeal", err)
	}
	if a == nil || a.IsDeleted {
		return nil, internal.ErrAppealNotFound
	}

	if !Status(a.Status).CanTransitionTo(StatusCompleted) {
		return nil, internal.ErrInvalidAppealStatus
	}

	now := time.Now()
	a.Status = string(StatusCompleted)
	a.CompletedAt = &now
	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to complete appeal", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to complete appeal", err)
	}

	s.logger.Info("appeal completed", "appeal_id", id, "actor_id", actor.ID)
	return FromDataModel(a), nil
}

// Delete is a soft delete: the row stays for the registry's paper trail but
// drops out of every listing and lookup.
func (s *Service) Delete(actor internal.Actor, id int64) error {
	a, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get appeal", "id", id, "error", err)
		return internal.NewInternalError("failed to delete appeal", err)
	}
	if a == nil || a.IsDeleted {
		return internal.ErrAppealNotFound
	}

	a.IsDeleted = true
	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to delete appeal", "id", id, "error", err)
		return internal.NewInternalError("failed to delete appeal", err)
	}

	s.logger.Info("appeal deleted", "appeal_id", id, "actor_id", actor.ID)
	return nil
}

// Export returns all matching appeals without pagination, for CSV export.
func (s *Service) Export(filter ListFilter) ([]*Appeal, error) {
	filter.Page = 1
	filter.PerPage = 0 // no limit

	appeals, _, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to export appeals", "error", err)
		return nil, internal.NewInternalError("failed to export appeals", err)
	}
	return FromDataModelSlice(appeals), nil
}
