package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetsight/fleetsight/internal/auth"
	"github.com/fleetsight/fleetsight/internal/authz"
	"github.com/fleetsight/fleetsight/internal/fleet"
	"github.com/fleetsight/fleetsight/internal/observability"
	"github.com/fleetsight/fleetsight/internal/permissions"
	"github.com/fleetsight/fleetsight/internal/shared"
	"github.com/fleetsight/fleetsight/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	Metrics            *observability.Metrics
	Guard              authz.Guard
	AuthHandler        *auth.Handler
	AccessHandler      *authz.Handler
	FleetHandler       *fleet.Handler
	PermissionsHandler *permissions.Handler
	UsersHandler       *users.Handler
}

// NewRouter constructs the chi.Router with FleetSight defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.Mount(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Authenticate)

		r.Get("/api/me/access", params.AccessHandler.Access)

		r.Route("/api/fleet", func(r chi.Router) {
			r.With(params.Guard.RequireSection(authz.SectionDashboard)).Get("/overview", params.FleetHandler.Overview)
			r.With(params.Guard.RequireSection(authz.SectionDevices)).Get("/vehicles", params.FleetHandler.Vehicles)
			r.With(params.Guard.RequireSection(authz.SectionSites)).Get("/sites", params.FleetHandler.Sites)
			r.With(params.Guard.RequireSection(authz.SectionDashboard)).Get("/customers", params.FleetHandler.Customers)
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(params.Guard.RequireCapability(func(p authz.EffectivePermissions) bool {
				return p.CanManageUsers
			}))
			params.PermissionsHandler.Mount(r)
			params.UsersHandler.Mount(r)
		})
	})

	return r
}
