package audit

import (
	"time"

	auditDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/audit"
)

type Entry struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func FromDataModel(a *auditDatamodel.AuditLog) *Entry {
	return &Entry{
		ID:         a.ID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		ActorID:    a.ActorID,
		OccurredAt: a.OccurredAt,
	}
}

func FromDataModelSlice(logs []*auditDatamodel.AuditLog) []*Entry {
	result := make([]*Entry, len(logs))
	for i, a := range logs {
		result[i] = FromDataModel(a)
	}
	return result
}

// ListFilter is the typed query surface for audit listing.
type ListFilter struct {
	Action     string
	EntityType string
	ActorID    *int64
	From       *time.Time
	To         *time.Time
	Page       int
	PerPage    int
}

type ListResponse struct {
	Entries []*Entry `json:"entries"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}
