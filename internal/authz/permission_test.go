package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecordSource struct {
	user      *PermissionRecord
	userErr   error
	domain    *PermissionRecord
	domainErr error

	userCalls   int
	domainCalls int
}

func (s *stubRecordSource) UserRecord(_ context.Context, _, _ string) (*PermissionRecord, error) {
	s.userCalls++
	return s.user, s.userErr
}

func (s *stubRecordSource) DomainRecord(_ context.Context, _ string) (*PermissionRecord, error) {
	s.domainCalls++
	return s.domain, s.domainErr
}

func boolPtr(v bool) *bool { return &v }

func TestEffectiveFromRecordNilYieldsDefaults(t *testing.T) {
	eff := EffectiveFromRecord(nil)
	assert.Equal(t, DefaultPermissions(), eff)
	assert.True(t, eff.ShowAllData)
	assert.True(t, eff.CanManageUsers)
	assert.False(t, eff.HideCostForecast)
}

func TestEffectiveFromRecordReplacesWholesale(t *testing.T) {
	rec := &PermissionRecord{
		Scope:                  ScopeUser,
		ShowAllData:            boolPtr(false),
		RestrictedCustomerName: "Acme",
		CanManageUsers:         boolPtr(false),
		HideUsageCosts:         boolPtr(true),
		HiddenSections:         []SectionID{SectionCosts},
	}
	eff := EffectiveFromRecord(rec)

	assert.Equal(t, ScopeUser, eff.Scope)
	assert.False(t, eff.ShowAllData)
	assert.Equal(t, "Acme", eff.RestrictedCustomerName)
	assert.False(t, eff.CanManageUsers)
	assert.True(t, eff.HideUsageCosts)
	assert.Equal(t, []SectionID{SectionCosts}, eff.HiddenSections)
	assert.Empty(t, eff.VisibleSections)

	// Absent pointer fields fall back per field, not per record.
	assert.True(t, eff.CanViewReports)
	assert.True(t, eff.CanExportData)
	assert.False(t, eff.HideCostForecast)
}

func TestResolveUserRecordWinsOverDomain(t *testing.T) {
	source := &stubRecordSource{
		user:   &PermissionRecord{Scope: ScopeUser, RestrictedCustomerName: "Acme"},
		domain: &PermissionRecord{Scope: ScopeDomain, RestrictedCustomerName: "Globex"},
	}
	resolver := NewResolver(source, nil)

	eff := resolver.Resolve(context.Background(), Principal{ID: "u1", Email: "ops@acme.test", Role: RoleUser})
	assert.Equal(t, ScopeUser, eff.Scope)
	assert.Equal(t, "Acme", eff.RestrictedCustomerName)
	assert.Zero(t, source.domainCalls, "domain lookup should be skipped when a user record exists")
}

func TestResolveFallsBackToDomainRecord(t *testing.T) {
	source := &stubRecordSource{
		domain: &PermissionRecord{Scope: ScopeDomain, LockCustomerFilter: boolPtr(true)},
	}
	resolver := NewResolver(source, nil)

	eff := resolver.Resolve(context.Background(), Principal{ID: "u1", Email: "ops@acme.test", Role: RoleUser})
	assert.Equal(t, ScopeDomain, eff.Scope)
	assert.True(t, eff.LockCustomerFilter)
	assert.Equal(t, 1, source.userCalls)
	assert.Equal(t, 1, source.domainCalls)
}

func TestResolveDefaultsWhenNothingStored(t *testing.T) {
	resolver := NewResolver(&stubRecordSource{}, nil)
	eff := resolver.Resolve(context.Background(), Principal{ID: "u1", Email: "ops@acme.test", Role: RoleViewer})
	assert.Equal(t, DefaultPermissions(), eff)
}

func TestResolveDegradesOnLookupError(t *testing.T) {
	source := &stubRecordSource{
		userErr: errors.New("permissions: store unavailable"),
		domain:  &PermissionRecord{Scope: ScopeDomain, RestrictedCustomerName: "Globex"},
	}
	resolver := NewResolver(source, nil)

	eff := resolver.Resolve(context.Background(), Principal{ID: "u1", Email: "ops@globex.test", Role: RoleUser})
	assert.Equal(t, ScopeDomain, eff.Scope)
	assert.Equal(t, "Globex", eff.RestrictedCustomerName)
}

func TestResolveFailsOpenWhenAllLookupsError(t *testing.T) {
	source := &stubRecordSource{
		userErr:   errors.New("permissions: store unavailable"),
		domainErr: errors.New("permissions: store unavailable"),
	}
	resolver := NewResolver(source, nil)

	eff := resolver.Resolve(context.Background(), Principal{ID: "u1", Email: "ops@acme.test", Role: RoleUser})
	require.Equal(t, DefaultPermissions(), eff)
	assert.True(t, eff.ShowAllData)
}

func TestResolveSkipsDomainLookupWithoutEmailDomain(t *testing.T) {
	source := &stubRecordSource{}
	resolver := NewResolver(source, nil)

	resolver.Resolve(context.Background(), Principal{ID: "u1", Email: "not-an-email", Role: RoleUser})
	assert.Zero(t, source.domainCalls)
}

func TestResolveNilSourceYieldsDefaults(t *testing.T) {
	resolver := NewResolver(nil, nil)
	eff := resolver.Resolve(context.Background(), Principal{ID: "u1", Role: RoleAdmin})
	assert.Equal(t, DefaultPermissions(), eff)
}
