package authz

import (
	"context"
	"log/slog"
)

// RecordScope identifies which key a permission record is stored under.
type RecordScope string

const (
	// ScopeUser records are keyed by a single principal and always win.
	ScopeUser RecordScope = "user"
	// ScopeDomain records are keyed by an email domain and apply to every
	// principal in that domain without a user record.
	ScopeDomain RecordScope = "domain"
	// ScopeDefault is the built-in fallback when no record is stored.
	ScopeDefault RecordScope = "default"
)

// PermissionRecord is a stored permission row. Capability and suppression
// flags are pointers so an absent field can fall back to the built-in
// default instead of reading as an explicit false.
type PermissionRecord struct {
	Scope                  RecordScope
	ShowAllData            *bool
	RestrictedCustomerName string
	LockCustomerFilter     *bool
	DefaultSite            string
	VisibleSections        []SectionID
	HiddenSections         []SectionID

	CanViewReports   *bool
	CanManageUsers   *bool
	CanExportData    *bool
	CanEditVehicles  *bool
	CanDeleteRecords *bool

	HideCostForecast *bool
	HideUsageCosts   *bool
}

// EffectivePermissions is the resolved permission set for one principal.
// Whether the leaderboard is hidden is deliberately not a field here; it is
// derived from the resolved section list via LeaderboardHidden so the two
// can never disagree.
type EffectivePermissions struct {
	Scope                  RecordScope
	ShowAllData            bool
	RestrictedCustomerName string
	LockCustomerFilter     bool
	DefaultSite            string
	VisibleSections        []SectionID
	HiddenSections         []SectionID

	CanViewReports   bool
	CanManageUsers   bool
	CanExportData    bool
	CanEditVehicles  bool
	CanDeleteRecords bool

	HideCostForecast bool
	HideUsageCosts   bool
}

// DefaultPermissions is the built-in record used when no stored record
// exists. It grants every capability: a permission store outage must not
// lock users out. The tenant filter stays fail-closed regardless, so this
// is open only within the principal's own tenant.
func DefaultPermissions() EffectivePermissions {
	return EffectivePermissions{
		Scope:            ScopeDefault,
		ShowAllData:      true,
		CanViewReports:   true,
		CanManageUsers:   true,
		CanExportData:    true,
		CanEditVehicles:  true,
		CanDeleteRecords: true,
	}
}

// EffectiveFromRecord materializes effective permissions from a stored
// record. The record replaces the default wholesale; only fields literally
// absent on the record (nil pointers, empty strings and lists) fall back to
// the default field. A nil record yields the defaults unchanged.
func EffectiveFromRecord(rec *PermissionRecord) EffectivePermissions {
	eff := DefaultPermissions()
	if rec == nil {
		return eff
	}
	eff.Scope = rec.Scope
	eff.ShowAllData = boolOr(rec.ShowAllData, eff.ShowAllData)
	eff.RestrictedCustomerName = rec.RestrictedCustomerName
	eff.LockCustomerFilter = boolOr(rec.LockCustomerFilter, eff.LockCustomerFilter)
	eff.DefaultSite = rec.DefaultSite
	eff.VisibleSections = cloneSections(rec.VisibleSections)
	eff.HiddenSections = cloneSections(rec.HiddenSections)

	eff.CanViewReports = boolOr(rec.CanViewReports, eff.CanViewReports)
	eff.CanManageUsers = boolOr(rec.CanManageUsers, eff.CanManageUsers)
	eff.CanExportData = boolOr(rec.CanExportData, eff.CanExportData)
	eff.CanEditVehicles = boolOr(rec.CanEditVehicles, eff.CanEditVehicles)
	eff.CanDeleteRecords = boolOr(rec.CanDeleteRecords, eff.CanDeleteRecords)

	eff.HideCostForecast = boolOr(rec.HideCostForecast, eff.HideCostForecast)
	eff.HideUsageCosts = boolOr(rec.HideUsageCosts, eff.HideUsageCosts)
	return eff
}

// RecordSource looks up stored permission records. Implementations own
// caching and staleness; the resolver treats any lookup error as "record
// absent" and degrades down the priority chain.
type RecordSource interface {
	UserRecord(ctx context.Context, principalID, email string) (*PermissionRecord, error)
	DomainRecord(ctx context.Context, domain string) (*PermissionRecord, error)
}

// Resolver computes the effective permission set for a principal.
type Resolver struct {
	source RecordSource
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(source RecordSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve returns the effective permissions for the principal. Priority is
// user record, then domain record, then the built-in default. Lookup
// failures are logged and treated as absence; resolution itself never
// fails.
func (r *Resolver) Resolve(ctx context.Context, p Principal) EffectivePermissions {
	p = p.Normalized()
	if r.source != nil {
		rec, err := r.source.UserRecord(ctx, p.ID, p.Email)
		if err != nil {
			r.logger.Warn("user permission lookup failed, degrading",
				slog.String("principal", p.ID), slog.Any("error", err))
			rec = nil
		}
		if rec == nil {
			if domain := p.EmailDomain(); domain != "" {
				rec, err = r.source.DomainRecord(ctx, domain)
				if err != nil {
					r.logger.Warn("domain permission lookup failed, using defaults",
						slog.String("domain", domain), slog.Any("error", err))
					rec = nil
				}
			}
		}
		if rec != nil {
			return EffectiveFromRecord(rec)
		}
	}
	return DefaultPermissions()
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
