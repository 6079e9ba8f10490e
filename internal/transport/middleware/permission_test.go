package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/appealsdesk/appeals-registry/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateRequest(t *testing.T, gate func(http.Handler) http.Handler, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/roles", nil)
	if user != nil {
		req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	gate(next).ServeHTTP(rec, req)
	return rec
}

func TestAccessGate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	gate := NewAccessGate("/dashboard", logger)

	tests := []struct {
		name       string
		user       *auth.User
		wantStatus int
	}{
		{
			name:       "no principal in context",
			user:       nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "holder of the required code",
			user:       &auth.User{ID: 1, Permissions: []string{"manage_roles"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "principal without the code",
			user:       &auth.User{ID: 2, Permissions: []string{"view_appeals"}},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "total admin without explicit grant",
			user:       &auth.User{ID: 3, IsAdmin: true},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gateRequest(t, gate.RequirePermission("manage_roles"), tt.user)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAccessGateDenialCarriesFallback(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	gate := NewAccessGate("/dashboard", logger)

	user := &auth.User{ID: 5, Permissions: []string{"view_appeals"}}
	rec := gateRequest(t, gate.RequirePermission("manage_roles"), user)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp deniedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "permission_denied", resp.Error.Code)
	assert.Equal(t, "/dashboard", resp.Fallback)
}

func TestAccessGateRequireAny(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	gate := NewAccessGate("/dashboard", logger)

	user := &auth.User{ID: 6, Permissions: []string{"edit_appeals"}}

	rec := gateRequest(t, gate.RequireAny("view_appeals", "edit_appeals"), user)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = gateRequest(t, gate.RequireAny("manage_roles", "manage_permissions"), user)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
