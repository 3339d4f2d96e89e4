package fleet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsight/fleetsight/internal/authz"
)

func accessRequest(path string, access authz.Access) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	return r.WithContext(authz.ContextWithAccess(r.Context(), access))
}

func TestOverviewReturnsScopedCollections(t *testing.T) {
	handler := NewHandler(NewService(&stubRepository{collections: fixtureCollections()}), nil)

	access := authz.Access{
		Principal:   authz.Principal{ID: "b1", Role: authz.RoleBatcher, TenantExternalRef: "T1", AssignedSiteIDs: []string{"S1"}},
		Permissions: authz.DefaultPermissions(),
	}
	rec := httptest.NewRecorder()
	handler.Overview(rec, accessRequest("/api/fleet/overview", access))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Vehicles []struct {
			ID string `json:"id"`
		} `json:"vehicles"`
		Sites []struct {
			ID string `json:"id"`
		} `json:"sites"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Vehicles, 1)
	require.Len(t, body.Sites, 1)
	assert.Equal(t, "V1", body.Vehicles[0].ID)
	assert.Equal(t, "S1", body.Sites[0].ID)
}

func TestVehiclesWithoutAccessRejected(t *testing.T) {
	handler := NewHandler(NewService(&stubRepository{}), nil)

	rec := httptest.NewRecorder()
	handler.Vehicles(rec, httptest.NewRequest(http.MethodGet, "/api/fleet/vehicles", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSitesEmptyForDriver(t *testing.T) {
	handler := NewHandler(NewService(&stubRepository{collections: fixtureCollections()}), nil)

	access := authz.Access{
		Principal:   authz.Principal{ID: "d1", Role: authz.RoleDriver, TenantExternalRef: "T1"},
		Permissions: authz.DefaultPermissions(),
	}
	rec := httptest.NewRecorder()
	handler.Sites(rec, accessRequest("/api/fleet/sites", access))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
