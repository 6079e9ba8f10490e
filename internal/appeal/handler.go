package appeal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/transport"
)

type ServiceAPI interface {
	List(filter ListFilter) (*AppealListResponse, error)
	GetByID(id int64) (*Appeal, error)
	Create(actor internal.Actor, req *CreateAppealRequest) (*Appeal, error)
	Update(actor internal.Actor, id int64, req *UpdateAppealRequest) (*Appeal, error)
	Assign(actor internal.Actor, id, executorID int64) (*Appeal, error)
	Complete(actor internal.Actor, id int64) (*Appeal, error)
	Delete(actor internal.Actor, id int64) error
	Export(filter ListFilter) ([]*Appeal, error)
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
	"status": {}, "section_id": {}, "page": {}, "per_page": {},
}

// parseListFilter builds the typed filter and rejects unknown query keys
// outright instead of silently ignoring them.
func parseListFilter(r *http.Request) (ListFilter, error) {
	var filter ListFilter
	query := r.URL.Query()

	for key := range query {
		if _, ok := allowedListParams[key]; !ok {
			return filter, internal.NewValidationError("unknown filter field: "+key, internal.ErrCodeUnknownFilterField)
		}
	}

	if status := query.Get("status"); status != "" {
		switch Status(status) {
		case StatusRegistered, StatusInProgress, StatusCompleted:
			filter.Status = Status(status)
		default:
			return filter, internal.NewValidationError("unknown status: "+status, internal.ErrCodeValidationFailed)
		}
	}
	if section := query.Get("section_id"); section != "" {
		id, err := strconv.ParseInt(section, 10, 64)
		if err != nil {
			return filter, internal.NewValidationError("invalid section_id", internal.ErrCodeValidationFailed)
		}
		filter.Section = &id
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
// @Summary List appeals
// @Tags appeals
// @Produce json
// @Param status query string false "Filter by status"
// @Param section_id query int false "Filter by section"
// @Success 200 {object} AppealListResponse
// @Router /api/v1/appeals [get]
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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid appeal id")
		return
	}

	a, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Create(actor, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid appeal id")
		return
	}

	var req UpdateAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Update(actor, id, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid appeal id")
		return
	}

	var req AssignAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExecutorID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "executor_id is required")
		return
	}

	a, err := h.Service.Assign(actor, id, req.ExecutorID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid appeal id")
		return
	}

	a, err := h.Service.Complete(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid appeal id")
		return
	}

	if err := h.Service.Delete(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export godoc
// @Summary Export appeals as CSV
// @Tags appeals
// @Produce text/csv
// @Router /api/v1/appeals/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	appeals, err := h.Service.Export(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=appeals-%s.csv", time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"reg_num", "citizen_name", "subject", "status", "created_at", "completed_at"}
	if err := writer.Write(header); err != nil {
		h.Logger.Error("failed to write csv header", "error", err)
		return
	}
	for _, a := range appeals {
		completed := ""
		if a.CompletedAt != nil {
			completed = a.CompletedAt.Format(time.RFC3339)
		}
		record := []string{
			a.RegNum,
			a.CitizenName,
			a.Subject,
			string(a.Status),
			a.CreatedAt.Format(time.RFC3339),
			completed,
		}
		if err := writer.Write(record); err != nil {
			h.Logger.Error("failed to write csv record", "error", err)
			return
		}
	}
}
