package authz

// SectionID identifies a navigable area of the dashboard.
type SectionID string

const (
	SectionDashboard     SectionID = "dashboard"
	SectionCompliance    SectionID = "compliance"
	SectionOperationsLog SectionID = "operations-log"
	SectionCosts         SectionID = "costs"
	SectionRefills       SectionID = "refills"
	SectionDevices       SectionID = "devices"
	SectionSites         SectionID = "sites"
	SectionReports       SectionID = "reports"
	SectionEmailReports  SectionID = "email-reports"
	SectionBranding      SectionID = "branding"
	SectionLeaderboard   SectionID = "leaderboard"
	SectionAIInsights    SectionID = "ai-insights"
	SectionSMSAlerts     SectionID = "sms-alerts"
)

// DefaultLanding is where unauthorized navigation is redirected.
const DefaultLanding = SectionDashboard

// sectionCatalogue is the full list in display order.
var sectionCatalogue = []SectionID{
	SectionDashboard,
	SectionCompliance,
	SectionOperationsLog,
	SectionCosts,
	SectionRefills,
	SectionDevices,
	SectionSites,
	SectionReports,
	SectionEmailReports,
	SectionBranding,
	SectionLeaderboard,
	SectionAIInsights,
	SectionSMSAlerts,
}

// minimalSections is the fallback for unknown or absent roles.
var minimalSections = []SectionID{
	SectionDashboard,
	SectionCompliance,
	SectionLeaderboard,
}

// AllSections returns the full section catalogue in display order.
func AllSections() []SectionID {
	return cloneSections(sectionCatalogue)
}

// DefaultSections returns the hard-coded section list for a role. This is
// the only place per-role lists live; resolvers consult it instead of
// keeping their own copies.
func DefaultSections(role Role) []SectionID {
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return cloneSections(sectionCatalogue)
	case RoleManager:
		return []SectionID{
			SectionDashboard,
			SectionCompliance,
			SectionOperationsLog,
			SectionCosts,
			SectionRefills,
			SectionDevices,
			SectionSites,
			SectionReports,
			SectionLeaderboard,
		}
	case RoleUser:
		return []SectionID{
			SectionDashboard,
			SectionCompliance,
			SectionOperationsLog,
			SectionRefills,
			SectionSites,
			SectionReports,
			SectionLeaderboard,
		}
	case RoleBatcher:
		return []SectionID{
			SectionDashboard,
			SectionOperationsLog,
			SectionRefills,
		}
	case RoleDriver:
		return []SectionID{
			SectionDashboard,
			SectionCompliance,
			SectionRefills,
			SectionLeaderboard,
		}
	case RoleViewer:
		return cloneSections(minimalSections)
	default:
		return cloneSections(minimalSections)
	}
}

// ParseSection validates a raw section identifier against the catalogue.
func ParseSection(raw string) (SectionID, bool) {
	id := SectionID(raw)
	for _, s := range sectionCatalogue {
		if s == id {
			return id, true
		}
	}
	return "", false
}

func cloneSections(src []SectionID) []SectionID {
	out := make([]SectionID, len(src))
	copy(out, src)
	return out
}
