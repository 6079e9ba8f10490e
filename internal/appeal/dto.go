package appeal

import (
	"strings"

	"github.com/appealsdesk/appeals-registry/internal"
)

type CreateAppealRequest struct {
	RegNum      string `json:"reg_num"`
	CitizenName string `json:"citizen_name"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	SectionID   *int64 `json:"section_id"`
}

func (r *CreateAppealRequest) Validate() error {
	r.RegNum = strings.TrimSpace(r.RegNum)
	r.CitizenName = strings.TrimSpace(r.CitizenName)
	r.Subject = strings.TrimSpace(r.Subject)

	if r.RegNum == "" {
		return internal.NewValidationFieldError("reg_num", "registration number is required", internal.ErrCodeValidationFailed)
	}
	if r.CitizenName == "" {
		return internal.NewValidationFieldError("citizen_name", "citizen name is required", internal.ErrCodeValidationFailed)
	}
	if r.Subject == "" {
		return internal.NewValidationFieldError("subject", "subject is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateAppealRequest struct {
	CitizenName string `json:"citizen_name"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	SectionID   *int64 `json:"section_id"`
}

func (r *UpdateAppealRequest) Validate() error {
	r.CitizenName = strings.TrimSpace(r.CitizenName)
	r.Subject = strings.TrimSpace(r.Subject)

	if r.CitizenName == "" {
		return internal.NewValidationFieldError("citizen_name", "citizen name is required", internal.ErrCodeValidationFailed)
	}
	if r.Subject == "" {
		return internal.NewValidationFieldError("subject", "subject is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type AssignAppealRequest struct {
	ExecutorID int64 `json:"executor_id"`
}

type AppealListResponse struct {
	Appeals []*Appeal `json:"appeals"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// ListFilter is the typed query surface for appeal listing. Parsing rejects
// query keys outside this set.
type ListFilter struct {
	Status  Status
	Section *int64
	Page    int
	PerPage int
}
