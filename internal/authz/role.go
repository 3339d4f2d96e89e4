package authz

import "strings"

// Role is the closed set of dashboard roles. Every resolver switches
// exhaustively over these values; raw role claims from the identity
// provider must pass through ParseRole before use.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleUser       Role = "user"
	RoleBatcher    Role = "batcher"
	RoleDriver     Role = "driver"
	RoleViewer     Role = "viewer"
)

// roleRanks orders roles by privilege. Higher outranks lower.
var roleRanks = map[Role]int{
	RoleSuperAdmin: 100,
	RoleAdmin:      80,
	RoleManager:    60,
	RoleUser:       40,
	RoleBatcher:    30,
	RoleDriver:     20,
	RoleViewer:     5,
}

// ParseRole maps a raw role claim onto the enumeration. Unrecognized or
// empty values degrade to RoleViewer so a bad claim never escalates.
func ParseRole(raw string) Role {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if !role.Valid() {
		return RoleViewer
	}
	return role
}

// Valid reports whether the role is part of the enumeration.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the privilege rank for the role. Unknown roles rank as viewer.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return roleRanks[RoleViewer]
}

// AtLeast reports whether r is at least as privileged as other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}
