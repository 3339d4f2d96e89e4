package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleSuperAdmin, ParseRole("super_admin"))
	assert.Equal(t, RoleBatcher, ParseRole("  BATCHER "))
	assert.Equal(t, RoleViewer, ParseRole("owner"))
	assert.Equal(t, RoleViewer, ParseRole(""))
}

func TestRoleRankOrdering(t *testing.T) {
	ordered := []Role{RoleViewer, RoleDriver, RoleBatcher, RoleUser, RoleManager, RoleAdmin, RoleSuperAdmin}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(), "%s should outrank %s", ordered[i], ordered[i-1])
	}
	assert.Equal(t, RoleViewer.Rank(), Role("bogus").Rank())
	assert.True(t, RoleAdmin.AtLeast(RoleManager))
	assert.False(t, RoleDriver.AtLeast(RoleUser))
}

func TestDefaultSectionsStayInCatalogue(t *testing.T) {
	catalogue := make(map[SectionID]struct{})
	for _, s := range AllSections() {
		catalogue[s] = struct{}{}
	}
	for _, role := range []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleUser, RoleBatcher, RoleDriver, RoleViewer} {
		sections := DefaultSections(role)
		require.NotEmpty(t, sections, "role %s", role)
		for _, s := range sections {
			_, ok := catalogue[s]
			assert.True(t, ok, "role %s lists unknown section %s", role, s)
		}
	}
}

func TestDefaultSectionsUnknownRoleMinimal(t *testing.T) {
	assert.Equal(t, []SectionID{SectionDashboard, SectionCompliance, SectionLeaderboard}, DefaultSections(Role("contractor")))
}

func TestDefaultSectionsReturnsCopies(t *testing.T) {
	first := DefaultSections(RoleAdmin)
	first[0] = SectionBranding
	assert.Equal(t, SectionDashboard, DefaultSections(RoleAdmin)[0])
}

func TestParseSection(t *testing.T) {
	id, ok := ParseSection("operations-log")
	require.True(t, ok)
	assert.Equal(t, SectionOperationsLog, id)

	_, ok = ParseSection("payroll")
	assert.False(t, ok)
}
