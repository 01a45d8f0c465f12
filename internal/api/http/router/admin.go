package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/handler"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
)

func (r *Router) registerAdminRoutes(
	app fiber.Router,
	ah *handler.AppointmentHandler,
	dh *handler.DashboardHandler,
	acc *handler.AccountHandler,
	guard guardFunc,
) {
	a := app.Group(handler.HomeAdmin, guard(authorize.Require(authorize.RoleAdmin)))

	a.Get("/", dh.Overview)
	a.Get("/dashboard", dh.Range)

	a.Get("/appointments", ah.List)
	a.Get("/appointments/:kind/:id", ah.Detail(""))
	a.Put("/appointments/:kind/:id/status", ah.UpdateStatus(""))

	a.Get("/accounts/:role", acc.List)
	a.Post("/accounts/:employeeKind", acc.AddEmployee)

	// client first: the employee route would match it too
	a.Delete("/client/:id", acc.RemoveClient)
	a.Delete("/:employeeKind/:id", acc.RemoveEmployee)
}

func (r *Router) registerProfileRoutes(app fiber.Router, acc *handler.AccountHandler, guard guardFunc) {
	// Any signed-in role; anonymous visitors log in as clients.
	p := app.Group("/profile", guard(authorize.RequireAny(authorize.RoleClient, authorize.AllRoles...)))

	p.Get("/:role/:id", acc.GetProfile)
	p.Put("/:role/:id", acc.UpdateProfile)
}
