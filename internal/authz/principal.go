package authz

import "strings"

// Principal is the authenticated actor access is resolved for. It is
// materialized once per session from the identity provider claim plus the
// stored profile row and treated as immutable until an explicit refresh.
type Principal struct {
	ID                 string
	Email              string
	Role               Role
	TenantID           string
	TenantExternalRef  string
	AssignedSiteIDs    []string
	AssignedVehicleIDs []string
	SectionOverride    []SectionID
}

// Normalized returns a copy with the role clamped onto the enumeration.
// A principal carrying an unrecognized role is treated as a viewer.
func (p Principal) Normalized() Principal {
	if !p.Role.Valid() {
		p.Role = RoleViewer
	}
	return p
}

// EmailDomain returns the lowercased domain part of the principal's email,
// or "" when the email carries no domain.
func (p Principal) EmailDomain() string {
	at := strings.LastIndexByte(p.Email, '@')
	if at < 0 || at == len(p.Email)-1 {
		return ""
	}
	return strings.ToLower(p.Email[at+1:])
}

// HasAssignedSite reports whether the site ID is in the assignment list.
func (p Principal) HasAssignedSite(id string) bool {
	for _, s := range p.AssignedSiteIDs {
		if s == id {
			return true
		}
	}
	return false
}

// HasAssignedVehicle matches either a vehicle ID or an RFID value against
// the assignment list.
func (p Principal) HasAssignedVehicle(values ...string) bool {
	for _, assigned := range p.AssignedVehicleIDs {
		for _, v := range values {
			if v != "" && v == assigned {
				return true
			}
		}
	}
	return false
}
