package authz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessEndpoint(t *testing.T) {
	access := Access{
		Principal:   Principal{ID: "u1", Email: "ops@acme.test", Role: RoleBatcher, TenantID: "t-uuid"},
		Permissions: DefaultPermissions(),
		Sections:    DefaultSections(RoleBatcher),
	}
	r := httptest.NewRequest(http.MethodGet, "/api/me/access", nil)
	r = r.WithContext(ContextWithAccess(r.Context(), access))

	rec := httptest.NewRecorder()
	NewHandler().Access(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		PrincipalID       string   `json:"principal_id"`
		Role              string   `json:"role"`
		Sections          []string `json:"sections"`
		DefaultLanding    string   `json:"default_landing"`
		LeaderboardHidden bool     `json:"leaderboard_hidden"`
		Permissions       struct {
			Scope       string `json:"scope"`
			ShowAllData bool   `json:"show_all_data"`
		} `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "u1", body.PrincipalID)
	assert.Equal(t, "batcher", body.Role)
	assert.Equal(t, []string{"dashboard", "operations-log", "refills"}, body.Sections)
	assert.Equal(t, "dashboard", body.DefaultLanding)
	assert.True(t, body.LeaderboardHidden, "batcher defaults do not include the leaderboard")
	assert.Equal(t, "default", body.Permissions.Scope)
	assert.True(t, body.Permissions.ShowAllData)
}

func TestAccessEndpointWithoutAccess(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().Access(rec, httptest.NewRequest(http.MethodGet, "/api/me/access", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
