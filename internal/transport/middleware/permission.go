package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/appealsdesk/appeals-registry/internal/auth"
)

// AccessGate guards routes by permission code. Denials tell the client where
// to land instead, so the frontend can bounce users to a page they can see.
type AccessGate struct {
	fallbackPath string
	logger       *slog.Logger
}

func NewAccessGate(fallbackPath string, logger *slog.Logger) *AccessGate {
	return &AccessGate{
		fallbackPath: fallbackPath,
		logger:       logger,
	}
}

type deniedResponse struct {
	Error    deniedError `json:"error"`
	Fallback string      `json:"fallback"`
}

type deniedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RequirePermission admits only principals that hold code. Total admins pass
// via User.Can.
func (g *AccessGate) RequirePermission(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.Can(code) {
				g.deny(w, user.ID, []string{code})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny admits principals holding at least one of the given codes.
func (g *AccessGate) RequireAny(codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.CanAny(codes...) {
				g.deny(w, user.ID, codes)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *AccessGate) deny(w http.ResponseWriter, userID int64, required []string) {
	g.logger.Warn("access denied",
		"user_id", userID,
		"required_permissions", required)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(deniedResponse{
		Error: deniedError{
			Code:    "permission_denied",
			Message: "insufficient permissions",
		},
		Fallback: g.fallbackPath,
	})
}
