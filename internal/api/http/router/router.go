package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/carwash_portal/config"
	"github.com/Alijeyrad/carwash_portal/internal/api/http/handler"
	"github.com/Alijeyrad/carwash_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/carwash_portal/internal/service/account"
	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
	"github.com/Alijeyrad/carwash_portal/internal/service/dashboard"
	"github.com/Alijeyrad/carwash_portal/internal/service/session"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/credentials"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg          *config.Config
	Sealer       *credentials.Sealer
	SessionSvc   session.Service
	Repo         appointment.Repository
	Controller   appointment.Controller
	DashboardSvc dashboard.Service
	AccountSvc   account.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

// Register mounts the role-prefixed route surface. Every page behind a guard
// re-resolves the visitor's session on each request.
func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Visitor identity for everything else
	app.Use(middleware.Visitor(r.p.Sealer, middleware.VisitorConfig{
		CookieName: r.p.Cfg.Credentials.CookieName,
		Secure:     r.p.Cfg.Credentials.Secure,
	}))

	guard := func(q authorize.Requirement) fiber.Handler {
		return middleware.Guard(r.p.SessionSvc, q)
	}

	// 3. Handlers
	sessionH := handler.NewSessionHandler(r.p.SessionSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.SessionSvc, r.p.Repo, r.p.Controller)
	dashboardH := handler.NewDashboardHandler(r.p.SessionSvc, r.p.DashboardSvc)
	accountH := handler.NewAccountHandler(r.p.SessionSvc, r.p.AccountSvc)

	// 4. Route groups
	r.registerSessionRoutes(app, sessionH, middleware.Identify(r.p.SessionSvc))
	r.registerBookingRoutes(app, appointmentH, guard)
	r.registerEmployeeRoutes(app, appointmentH, dashboardH, guard)
	r.registerAdminRoutes(app, appointmentH, dashboardH, accountH, guard)
	r.registerProfileRoutes(app, accountH, guard)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
