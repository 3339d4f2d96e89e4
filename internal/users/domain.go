package users

import "time"

// User is the stored profile row a principal is materialized from. The
// raw role claim is kept as text and parsed onto the closed role
// enumeration at materialization time.
type User struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Role               string
	TenantID           string
	TenantExternalRef  string
	AssignedSiteIDs    []string
	AssignedVehicleIDs []string
	SectionOverride    []string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
