package auth

import (
	"encoding/json"
	"net/http"

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service AuthService
}

func NewHandler(baseHandler *transport.BaseHandler, service AuthService) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Login godoc
// @Summary Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginDTO true "Credentials"
// @Success 200 {object} AuthTokens
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

// Refresh godoc
// @Summary Rotate an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenDTO true "Refresh token"
// @Success 200 {object} AuthTokens
// @Router /api/v1/auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout is stateless: tokens are not stored server side, the client simply
// discards them. The endpoint exists so clients have a uniform flow.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current principal with effective permissions
// @Tags auth
// @Produce json
// @Success 200 {object} User
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// AuthMiddleware validates the bearer token and loads the principal fresh
// from storage, so role and grant changes take effect on the next request
// without re-login.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := h.ExtractTokenFromHeader(r)
		if tokenString == "" {
			h.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := h.Service.ValidateAccessToken(tokenString)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		u, err := h.Service.GetUserWithPermissions(claims.UserID)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		if !u.IsActive {
			h.HandleServiceError(w, internal.ErrUserInactive)
			return
		}

		ctx := ContextWithUser(r.Context(), u)
		ctx = internal.ContextWithActor(ctx, u.Actor())
		ctx = internal.ContextWithActorID(ctx, u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
