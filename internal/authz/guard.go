package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fleetsight/fleetsight/internal/platform/httpx"
	"github.com/fleetsight/fleetsight/internal/shared"
)

// PrincipalSource materializes the signed-in principal from the profile
// store.
type PrincipalSource interface {
	PrincipalByID(ctx context.Context, id string) (Principal, error)
}

// OverrideSource supplies administrator-configured role section overrides.
// A fetch failure is treated as "no overrides configured".
type OverrideSource interface {
	RoleSectionOverrides(ctx context.Context) (RoleSectionOverrides, error)
}

// Guard wires access resolution into the HTTP middleware chain.
type Guard struct {
	Principals PrincipalSource
	Resolver   *Resolver
	Overrides  OverrideSource
	Logger     *slog.Logger
}

// Authenticate resolves the request's principal, permissions and sections
// and stores the snapshot in context. Requests without a signed-in session
// are rejected with 401.
func (g Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || strings.TrimSpace(sess.User()) == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}

		ctx := r.Context()
		principal, err := g.Principals.PrincipalByID(ctx, strings.TrimSpace(sess.User()))
		if err != nil {
			g.logger().Warn("principal lookup failed", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		principal = principal.Normalized()

		perms := g.Resolver.Resolve(ctx, principal)
		access := Access{
			Principal:   principal,
			Permissions: perms,
			Sections:    ResolveSections(principal, perms, g.roleOverrides(ctx)),
		}
		next.ServeHTTP(w, r.WithContext(ContextWithAccess(ctx, access)))
	})
}

// RequireSection gates a route on section visibility. An unauthorized
// request is silently redirected to the default landing section rather than
// answered with an error, so the response does not leak which sections
// exist.
func (g Guard) RequireSection(id SectionID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := AccessFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !access.CanSee(id) {
				http.Redirect(w, r, "/"+string(DefaultLanding), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability gates a route on a resolved capability flag.
func (g Guard) RequireCapability(check func(EffectivePermissions) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := AccessFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !check(access.Permissions) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g Guard) roleOverrides(ctx context.Context) RoleSectionOverrides {
	if g.Overrides == nil {
		return nil
	}
	overrides, err := g.Overrides.RoleSectionOverrides(ctx)
	if err != nil {
		g.logger().Warn("role override fetch failed, using role defaults", slog.Any("error", err))
		return nil
	}
	return overrides
}

func (g Guard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}
