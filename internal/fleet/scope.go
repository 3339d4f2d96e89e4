package fleet

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/fleetsight/fleetsight/internal/authz"
)

// Scope narrows raw entity collections to what the principal is entitled
// to see. The collections arrive pre-fetched from a broad tenant query;
// scoping is pure in-memory filtering.
//
// super_admin passes through unfiltered. Every other role first gets the
// tenant filter: entities whose TenantExternalRef differs from the
// principal's are dropped, and a principal without a tenant reference gets
// empty collections (fail closed). A role filter then applies within the
// tenant-filtered set.
func Scope(p authz.Principal, perms authz.EffectivePermissions, in Collections) Collections {
	p = p.Normalized()

	if p.Role == authz.RoleSuperAdmin {
		return in
	}

	if strings.TrimSpace(p.TenantExternalRef) == "" {
		return Collections{
			Vehicles:  []Vehicle{},
			Sites:     []Site{},
			Customers: []Customer{},
		}
	}
	scoped := tenantFilter(p.TenantExternalRef, in)

	switch p.Role {
	case authz.RoleAdmin, authz.RoleUser, authz.RoleViewer:
		return customerFilter(perms.RestrictedCustomerName, scoped)
	case authz.RoleManager:
		if len(p.AssignedSiteIDs) == 0 {
			return scoped
		}
		return siteAssignmentFilter(p, scoped)
	case authz.RoleBatcher:
		// Unlike manager there is no whole-tenant fallback: an unassigned
		// batcher sees nothing.
		if len(p.AssignedSiteIDs) == 0 {
			return Collections{
				Vehicles:  []Vehicle{},
				Sites:     []Site{},
				Customers: []Customer{},
			}
		}
		return siteAssignmentFilter(p, scoped)
	case authz.RoleDriver:
		return driverFilter(p, scoped)
	default:
		return customerFilter(perms.RestrictedCustomerName, scoped)
	}
}

func tenantFilter(ref string, in Collections) Collections {
	out := Collections{
		Vehicles:  make([]Vehicle, 0, len(in.Vehicles)),
		Sites:     make([]Site, 0, len(in.Sites)),
		Customers: make([]Customer, 0, len(in.Customers)),
	}
	for _, v := range in.Vehicles {
		if v.TenantExternalRef == ref {
			out.Vehicles = append(out.Vehicles, v)
		}
	}
	for _, s := range in.Sites {
		if s.TenantExternalRef == ref {
			out.Sites = append(out.Sites, s)
		}
	}
	for _, c := range in.Customers {
		if c.TenantExternalRef == ref {
			out.Customers = append(out.Customers, c)
		}
	}
	return out
}

// customerFilter narrows to sites whose customer display name contains the
// restriction string, case-insensitively, plus the vehicles on those sites
// and the matching customers. An empty restriction passes everything
// through.
func customerFilter(restriction string, in Collections) Collections {
	restriction = strings.TrimSpace(restriction)
	if restriction == "" {
		return in
	}
	out := Collections{
		Vehicles:  []Vehicle{},
		Sites:     []Site{},
		Customers: []Customer{},
	}
	kept := make(map[string]struct{})
	for _, s := range in.Sites {
		if foldContains(s.CustomerName, restriction) {
			out.Sites = append(out.Sites, s)
			kept[s.ID] = struct{}{}
		}
	}
	for _, v := range in.Vehicles {
		if _, ok := kept[v.SiteID]; ok {
			out.Vehicles = append(out.Vehicles, v)
		}
	}
	for _, c := range in.Customers {
		if foldContains(c.Name, restriction) {
			out.Customers = append(out.Customers, c)
		}
	}
	return out
}

func siteAssignmentFilter(p authz.Principal, in Collections) Collections {
	out := Collections{
		Vehicles:  []Vehicle{},
		Sites:     []Site{},
		Customers: in.Customers,
	}
	kept := make(map[string]struct{}, len(p.AssignedSiteIDs))
	for _, s := range in.Sites {
		if p.HasAssignedSite(s.ID) {
			out.Sites = append(out.Sites, s)
			kept[s.ID] = struct{}{}
		}
	}
	for _, v := range in.Vehicles {
		if _, ok := kept[v.SiteID]; ok {
			out.Vehicles = append(out.Vehicles, v)
		}
	}
	return out
}

// driverFilter ignores sites entirely. Vehicles are matched by ID or RFID
// against the assignment list; a driver with no assignments sees the whole
// tenant's vehicles.
func driverFilter(p authz.Principal, in Collections) Collections {
	out := Collections{
		Vehicles:  []Vehicle{},
		Sites:     []Site{},
		Customers: []Customer{},
	}
	if len(p.AssignedVehicleIDs) == 0 {
		out.Vehicles = in.Vehicles
		return out
	}
	for _, v := range in.Vehicles {
		if p.HasAssignedVehicle(v.ID, v.RFID) {
			out.Vehicles = append(out.Vehicles, v)
		}
	}
	return out
}

// foldContains reports whether haystack contains needle under Unicode case
// folding.
func foldContains(haystack, needle string) bool {
	caser := cases.Fold()
	return strings.Contains(caser.String(haystack), caser.String(needle))
}
