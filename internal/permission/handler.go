package permission

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/appealsdesk/appeals-registry/internal/transport"
)

type ServiceAPI interface {
	GetAll() ([]*Permission, error)
	GetByCategory(category Category) ([]*Permission, error)
	GetGrouped() (*GroupedPermissionsResponse, error)
	GetByID(id int64) (*Permission, error)
	Create(req *CreatePermissionRequest) (*Permission, error)
	Update(id int64, req *UpdatePermissionRequest) (*Permission, error)
	SetActive(id int64, active bool) (*Permission, error)
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
// @Summary List permissions
// @Tags permissions
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {object} PermissionListResponse
// @Router /api/v1/permissions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if categoryParam := r.URL.Query().Get("category"); categoryParam != "" {
		category, ok := ParseCategory(categoryParam)
		if !ok {
			h.WriteError(w, http.StatusBadRequest, "unknown category: "+categoryParam)
			return
		}
		perms, err := h.Service.GetByCategory(category)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, PermissionListResponse{Permissions: perms})
		return
	}

	perms, err := h.Service.GetAll()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionListResponse{Permissions: perms})
}

// ListGrouped godoc
// @Summary List permissions grouped by category
// @Tags permissions
// @Produce json
// @Success 200 {object} GroupedPermissionsResponse
// @Router /api/v1/permissions/grouped [get]
func (h *Handler) ListGrouped(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.Service.GetGrouped()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, grouped)
}

// ListAbilities godoc
// @Summary List semantic ability predicates and their permission codes
// @Tags permissions
// @Produce json
// @Success 200 {object} AbilitiesResponse
// @Router /api/v1/permissions/abilities [get]
func (h *Handler) ListAbilities(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, AbilitiesResponse{Abilities: Abilities()})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	perm, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perm)
}

// Create godoc
// @Summary Create a permission
// @Tags permissions
// @Accept json
// @Produce json
// @Param request body CreatePermissionRequest true "Permission"
// @Success 201 {object} Permission
// @Router /api/v1/permissions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	perm, err := h.Service.Create(&req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, perm)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	var req UpdatePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	perm, err := h.Service.Update(id, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perm)
}

// SetActive godoc
// @Summary Enable or disable a permission
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path int true "Permission ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} Permission
// @Router /api/v1/permissions/{id}/active [patch]
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	perm, err := h.Service.SetActive(id, req.IsActive)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perm)
}
