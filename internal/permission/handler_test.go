package permission_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/appealsdesk/appeals-registry/internal/permission"
	"github.com/appealsdesk/appeals-registry/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAbilities(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	h := permission.NewHandler(transport.NewBaseHandler(logger), nil)

	req := httptest.NewRequest("GET", "/api/v1/permissions/abilities", nil)
	rec := httptest.NewRecorder()
	h.ListAbilities(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp permission.AbilitiesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, permission.CodeViewAppeals, resp.Abilities["ViewAppeals"])
	assert.Equal(t, permission.CodeManageRoles, resp.Abilities["ManageRoles"])
	assert.Len(t, resp.Abilities, len(permission.Abilities()))
}
