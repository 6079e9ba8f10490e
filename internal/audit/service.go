package audit

import (
	"log/slog"

	"github.com/appealsdesk/appeals-registry/internal"
	auditDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/audit"
)

type RepositoryAPI interface {
	Insert(log *auditDatamodel.AuditLog) error
	List(filter ListFilter) ([]*auditDatamodel.AuditLog, int64, error)
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

func (s *Service) List(filter ListFilter) (*ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 200 {
		filter.PerPage = 50
	}

	logs, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		return nil, internal.NewInternalError("failed to list audit logs", err)
	}

	return &ListResponse{
		Entries: FromDataModelSlice(logs),
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

// Export returns all matching entries without pagination.
func (s *Service) Export(filter ListFilter) ([]*Entry, error) {
	filter.Page = 1
	filter.PerPage = 0

	logs, _, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to export audit logs", "error", err)
		return nil, internal.NewInternalError("failed to export audit logs", err)
	}
	return FromDataModelSlice(logs), nil
}
