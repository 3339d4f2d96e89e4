package permissions

import (
	"errors"
	"time"

	"github.com/fleetsight/fleetsight/internal/authz"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("permissions: not found")

// Record is a stored permission record together with its storage key.
// Subject is the principal email for user-scope records and the email
// domain for domain-scope records.
type Record struct {
	Subject   string
	Stored    authz.PermissionRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleOverride is an administrator-configured replacement for a role's
// default section list.
type RoleOverride struct {
	Role            authz.Role
	VisibleSections []authz.SectionID
	UpdatedAt       time.Time
}
