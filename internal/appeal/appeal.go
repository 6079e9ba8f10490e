package appeal

import (
	"time"

	appealDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/appeal"
)

// Status is the appeal lifecycle state. Transitions only move forward:
// registered to in_progress to completed.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusRegistered:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	}
	return false
}

type Appeal struct {
	ID          int64      `json:"id"`
	RegNum      string     `json:"reg_num"`
	CitizenName string     `json:"citizen_name"`
	Subject     string     `json:"subject"`
	Content     string     `json:"content,omitempty"`
	Status      Status     `json:"status"`
	SectionID   *int64     `json:"section_id,omitempty"`
	ExecutorID  *int64     `json:"executor_id,omitempty"`
	CreatedBy   int64      `json:"created_by"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FromDataModel(a *appealDatamodel.Appeal) *Appeal {
	return &Appeal{
		ID:          a.ID,
		RegNum:      a.RegNum,
		CitizenName: a.CitizenName,
		Subject:     a.Subject,
		Content:     a.Content,
		Status:      Status(a.Status),
		SectionID:   a.SectionID,
		ExecutorID:  a.ExecutorID,
		CreatedBy:   a.CreatedBy,
		CompletedAt: a.CompletedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModelSlice(appeals []*appealDatamodel.Appeal) []*Appeal {
	result := make([]*Appeal, len(appeals))
	for i, a := range appeals {
		result[i] = FromDataModel(a)
	}
	return result
}
