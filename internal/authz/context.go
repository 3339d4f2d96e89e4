package authz

import "context"

// Access bundles everything resolved for the signed-in principal: the
// principal itself, its effective permissions and the visible sections.
// It is computed once per request from a snapshot of its inputs.
type Access struct {
	Principal   Principal
	Permissions EffectivePermissions
	Sections    []SectionID
}

// CanSee reports whether the section is visible to this access snapshot.
func (a Access) CanSee(id SectionID) bool {
	return SectionVisible(a.Sections, id)
}

type accessContextKey struct{}

// ContextWithAccess stores the resolved access in context.
func ContextWithAccess(ctx context.Context, access Access) context.Context {
	return context.WithValue(ctx, accessContextKey{}, access)
}

// AccessFromContext extracts the resolved access from context. The second
// return is false when no authenticated principal was resolved.
func AccessFromContext(ctx context.Context) (Access, bool) {
	access, ok := ctx.Value(accessContextKey{}).(Access)
	return access, ok
}
