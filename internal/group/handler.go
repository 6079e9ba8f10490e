package group

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/transport"
)

type ServiceAPI interface {
	GetAll() ([]*Group, error)
	GetAssignable(actor internal.Actor) ([]*Group, error)
	GetByID(id int64) (*Group, error)
	Create(ctx context.Context, actor internal.Actor, req *CreateGroupRequest) (*Group, error)
	Update(ctx context.Context, actor internal.Actor, id int64, req *UpdateGroupRequest) (*Group, error)
	SetPermissions(ctx context.Context, actor internal.Actor, id int64, req *SetPermissionsRequest) (*Group, error)
	Delete(ctx context.Context, actor internal.Actor, id int64) error
	ApplyToUser(ctx context.Context, actor internal.Actor, groupID, userID int64) (*ApplyGroupResponse, error)
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

// List godoc
// @Summary List permission groups
// @Tags permission-groups
// @Produce json
// @Param assignable query bool false "Only groups the caller may apply"
// @Success 200 {object} GroupListResponse
// @Router /api/v1/permission-groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("assignable") == "true" {
		actor, ok := internal.ActorFromContext(r.Context())
		if !ok {
			h.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		groups, err := h.Service.GetAssignable(actor)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
		return
	}

	groups, err := h.Service.GetAll()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	grp, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, grp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grp, err := h.Service.Create(r.Context(), actor, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, grp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grp, err := h.Service.Update(r.Context(), actor, id, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, grp)
}

func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req SetPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grp, err := h.Service.SetPermissions(r.Context(), actor, id, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, grp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Apply godoc
// @Summary Apply a permission group to a user
// @Tags permission-groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body ApplyGroupRequest true "Target user"
// @Success 200 {object} ApplyGroupResponse
// @Router /api/v1/permission-groups/{id}/apply [post]
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req ApplyGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.Service.ApplyToUser(r.Context(), actor, id, req.UserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}
