package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsight/fleetsight/internal/authz"
)

func fixtureCollections() Collections {
	return Collections{
		Vehicles: []Vehicle{
			{ID: "V1", Name: "Mixer 1", TenantExternalRef: "T1", SiteID: "S1", RFID: "RF-100"},
			{ID: "V2", Name: "Mixer 2", TenantExternalRef: "T1", SiteID: "S2", RFID: "RF-200"},
			{ID: "V3", Name: "Loader 1", TenantExternalRef: "T2", SiteID: "S3", RFID: "RF-300"},
		},
		Sites: []Site{
			{ID: "S1", Name: "North Yard", TenantExternalRef: "T1", CustomerName: "Acme Concrete"},
			{ID: "S2", Name: "South Yard", TenantExternalRef: "T1", CustomerName: "Globex Mining"},
			{ID: "S3", Name: "East Yard", TenantExternalRef: "T2", CustomerName: "Acme Concrete"},
		},
		Customers: []Customer{
			{Ref: "C1", Name: "Acme Concrete", TenantExternalRef: "T1"},
			{Ref: "C2", Name: "Globex Mining", TenantExternalRef: "T1"},
			{Ref: "C3", Name: "Acme Concrete", TenantExternalRef: "T2"},
		},
	}
}

func vehicleIDs(vs []Vehicle) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func siteIDs(ss []Site) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ID)
	}
	return out
}

func TestScopeSuperAdminPassesThrough(t *testing.T) {
	in := fixtureCollections()
	// No tenant ref on purpose: super_admin skips the tenant filter too.
	got := Scope(authz.Principal{ID: "sa", Role: authz.RoleSuperAdmin}, authz.EffectivePermissions{}, in)
	assert.Equal(t, in, got)
}

func TestScopeMissingTenantRefFailsClosed(t *testing.T) {
	for _, role := range []authz.Role{
		authz.RoleAdmin, authz.RoleManager, authz.RoleUser,
		authz.RoleBatcher, authz.RoleDriver, authz.RoleViewer,
	} {
		got := Scope(authz.Principal{ID: "u1", Role: role, TenantExternalRef: "  "}, authz.EffectivePermissions{}, fixtureCollections())
		assert.Empty(t, got.Vehicles, "role %s", role)
		assert.Empty(t, got.Sites, "role %s", role)
		assert.Empty(t, got.Customers, "role %s", role)
	}
}

func TestScopeNeverLeaksOtherTenants(t *testing.T) {
	in := fixtureCollections()
	for _, role := range []authz.Role{
		authz.RoleAdmin, authz.RoleManager, authz.RoleUser,
		authz.RoleBatcher, authz.RoleDriver, authz.RoleViewer,
	} {
		p := authz.Principal{
			ID:                 "u1",
			Role:               role,
			TenantExternalRef:  "T1",
			AssignedSiteIDs:    []string{"S1", "S2", "S3"},
			AssignedVehicleIDs: []string{"V1", "V2", "V3"},
		}
		got := Scope(p, authz.EffectivePermissions{}, in)
		for _, v := range got.Vehicles {
			assert.Equal(t, "T1", v.TenantExternalRef, "role %s leaked vehicle %s", role, v.ID)
		}
		for _, s := range got.Sites {
			assert.Equal(t, "T1", s.TenantExternalRef, "role %s leaked site %s", role, s.ID)
		}
		for _, c := range got.Customers {
			assert.Equal(t, "T1", c.TenantExternalRef, "role %s leaked customer %s", role, c.Ref)
		}
	}
}

func TestScopeAdminWithoutRestrictionSeesWholeTenant(t *testing.T) {
	got := Scope(authz.Principal{ID: "u1", Role: authz.RoleAdmin, TenantExternalRef: "T1"}, authz.EffectivePermissions{}, fixtureCollections())
	assert.ElementsMatch(t, []string{"V1", "V2"}, vehicleIDs(got.Vehicles))
	assert.ElementsMatch(t, []string{"S1", "S2"}, siteIDs(got.Sites))
	assert.Len(t, got.Customers, 2)
}

func TestScopeCustomerRestrictionIsCaseInsensitive(t *testing.T) {
	perms := authz.EffectivePermissions{RestrictedCustomerName: "acme"}
	got := Scope(authz.Principal{ID: "u1", Role: authz.RoleUser, TenantExternalRef: "T1"}, perms, fixtureCollections())

	assert.Equal(t, []string{"S1"}, siteIDs(got.Sites))
	assert.Equal(t, []string{"V1"}, vehicleIDs(got.Vehicles))
	require.Len(t, got.Customers, 1)
	assert.Equal(t, "C1", got.Customers[0].Ref)
}

func TestScopeManagerFallsBackToWholeTenant(t *testing.T) {
	got := Scope(authz.Principal{ID: "m1", Role: authz.RoleManager, TenantExternalRef: "T1"}, authz.EffectivePermissions{}, fixtureCollections())
	assert.ElementsMatch(t, []string{"V1", "V2"}, vehicleIDs(got.Vehicles))
	assert.ElementsMatch(t, []string{"S1", "S2"}, siteIDs(got.Sites))
}

func TestScopeManagerWithAssignmentsNarrowsToSites(t *testing.T) {
	p := authz.Principal{ID: "m1", Role: authz.RoleManager, TenantExternalRef: "T1", AssignedSiteIDs: []string{"S2"}}
	got := Scope(p, authz.EffectivePermissions{}, fixtureCollections())
	assert.Equal(t, []string{"S2"}, siteIDs(got.Sites))
	assert.Equal(t, []string{"V2"}, vehicleIDs(got.Vehicles))
}

func TestScopeUnassignedBatcherSeesNothing(t *testing.T) {
	got := Scope(authz.Principal{ID: "b1", Role: authz.RoleBatcher, TenantExternalRef: "T1"}, authz.EffectivePermissions{}, fixtureCollections())
	assert.Empty(t, got.Vehicles)
	assert.Empty(t, got.Sites)
	assert.Empty(t, got.Customers)
}

func TestScopeBatcherWithAssignment(t *testing.T) {
	p := authz.Principal{ID: "b1", Role: authz.RoleBatcher, TenantExternalRef: "T1", AssignedSiteIDs: []string{"S1"}}
	got := Scope(p, authz.EffectivePermissions{}, fixtureCollections())

	assert.Equal(t, []string{"S1"}, siteIDs(got.Sites))
	assert.Equal(t, []string{"V1"}, vehicleIDs(got.Vehicles))
}

func TestScopeDriverMatchesByIDOrRFID(t *testing.T) {
	p := authz.Principal{
		ID:                 "d1",
		Role:               authz.RoleDriver,
		TenantExternalRef:  "T1",
		AssignedVehicleIDs: []string{"RF-200"},
	}
	got := Scope(p, authz.EffectivePermissions{}, fixtureCollections())

	assert.Equal(t, []string{"V2"}, vehicleIDs(got.Vehicles))
	assert.Empty(t, got.Sites, "drivers never see sites")
	assert.Empty(t, got.Customers)
}

func TestScopeUnassignedDriverSeesTenantVehicles(t *testing.T) {
	p := authz.Principal{ID: "d1", Role: authz.RoleDriver, TenantExternalRef: "T1"}
	got := Scope(p, authz.EffectivePermissions{}, fixtureCollections())

	assert.ElementsMatch(t, []string{"V1", "V2"}, vehicleIDs(got.Vehicles))
	assert.Empty(t, got.Sites)
}

func TestScopeUnknownRoleGetsCustomerFilter(t *testing.T) {
	perms := authz.EffectivePermissions{RestrictedCustomerName: "Globex"}
	got := Scope(authz.Principal{ID: "u1", Role: authz.Role("auditor"), TenantExternalRef: "T1"}, perms, fixtureCollections())
	assert.Equal(t, []string{"S2"}, siteIDs(got.Sites))
	assert.Equal(t, []string{"V2"}, vehicleIDs(got.Vehicles))
}

func TestScopeIsIdempotent(t *testing.T) {
	p := authz.Principal{ID: "m1", Role: authz.RoleManager, TenantExternalRef: "T1", AssignedSiteIDs: []string{"S1"}}
	perms := authz.EffectivePermissions{}

	once := Scope(p, perms, fixtureCollections())
	twice := Scope(p, perms, once)
	assert.Equal(t, once, twice)
}
