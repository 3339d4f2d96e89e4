package users

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetsight/fleetsight/internal/authz"
)

func TestPrincipalConversion(t *testing.T) {
	user := User{
		ID:                 "u1",
		Email:              "ops@acme.test",
		Role:               "Manager",
		TenantID:           "t-uuid",
		TenantExternalRef:  "T1",
		AssignedSiteIDs:    []string{"S1", "S2"},
		AssignedVehicleIDs: []string{"V9"},
		SectionOverride:    []string{"dashboard", "payroll", "costs"},
	}

	p := Principal(user)
	assert.Equal(t, authz.RoleManager, p.Role)
	assert.Equal(t, "T1", p.TenantExternalRef)
	assert.Equal(t, []string{"S1", "S2"}, p.AssignedSiteIDs)
	assert.Equal(t, []authz.SectionID{authz.SectionDashboard, authz.SectionCosts}, p.SectionOverride,
		"unknown section names are dropped from the override")
}

func TestPrincipalUnknownRoleClampsToViewer(t *testing.T) {
	p := Principal(User{ID: "u1", Role: "superhero"})
	assert.Equal(t, authz.RoleViewer, p.Role)
}

func TestPrincipalEmptyOverrideStaysEmpty(t *testing.T) {
	p := Principal(User{ID: "u1", Role: "driver"})
	assert.Empty(t, p.SectionOverride)
}
