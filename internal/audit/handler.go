package audit

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/transport"
)

type ServiceAPI interface {
	List(filter ListFilter) (*ListResponse, error)
	Export(filter ListFilter) ([]*Entry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

var allowedListParams = map[string]struct{}{
	"action": {}, "entity_type": {}, "actor_id": {}, "from": {}, "to": {},
	"page": {}, "per_page": {},
}

// parseListFilter rejects unknown query keys instead of silently ignoring
// them: a typo in an audit query must not quietly widen the result set.
func parseListFilter(r *http.Request) (ListFilter, error) {
	var filter ListFilter
	query := r.URL.Query()

	for key := range query {
		if _, ok := allowedListParams[key]; !ok {
			return filter, internal.NewValidationError("unknown filter field: "+key, internal.ErrCodeUnknownFilterField)
		}
	}

	filter.Action = query.Get("action")
	filter.EntityType = query.Get("entity_type")

	if actor := query.Get("actor_id"); actor != "" {
		id, err := strconv.ParseInt(actor, 10, 64)
		if err != nil {
			return filter, internal.NewValidationError("invalid actor_id", internal.ErrCodeValidationFailed)
		}
		filter.ActorID = &id
	}
	if from := query.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filter, internal.NewValidationError("invalid from timestamp, want RFC3339", internal.ErrCodeValidationFailed)
		}
		filter.From = &t
	}
	if to := query.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filter, internal.NewValidationError("invalid to timestamp, want RFC3339", internal.ErrCodeValidationFailed)
		}
		filter.To = &t
	}
	if page := query.Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return filter, internal.NewValidationError("invalid page", internal.ErrCodeValidationFailed)
		}
		filter.Page = n
	}
	if perPage := query.Get("per_page"); perPage != "" {
		n, err := strconv.Atoi(perPage)
		if err != nil {
			return filter, internal.NewValidationError("invalid per_page", internal.ErrCodeValidationFailed)
		}
		filter.PerPage = n
	}
	return filter, nil
}

// List godoc
// @Summary List audit log entries
// @Tags audit
// @Produce json
// @Param action query string false "Filter by action"
// @Param entity_type query string false "Filter by entity type"
// @Param actor_id query int false "Filter by actor"
// @Success 200 {object} ListResponse
// @Router /api/v1/audit-logs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.List(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Export godoc
// @Summary Export audit log entries as CSV
// @Tags audit
// @Produce text/csv
// @Router /api/v1/audit-logs/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	entries, err := h.Service.Export(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=audit-logs-%s.csv", time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"action", "entity_type", "entity_id", "actor_id", "occurred_at"}); err != nil {
		h.Logger.Error("failed to write csv header", "error", err)
		return
	}
	for _, e := range entries {
		record := []string{
			e.Action,
			e.EntityType,
			e.EntityID,
			strconv.FormatInt(e.ActorID, 10),
			e.OccurredAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			h.Logger.Error("failed to write csv record", "error", err)
			return
		}
	}
}
