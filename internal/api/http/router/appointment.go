package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/handler"
	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
)

type guardFunc func(authorize.Requirement) fiber.Handler

func (r *Router) registerBookingRoutes(app fiber.Router, ah *handler.AppointmentHandler, guard guardFunc) {
	b := app.Group(handler.HomeClient, guard(authorize.Require(authorize.RoleClient)))

	b.Get("/", ah.List)
	b.Get("/quote", ah.Quote)
	b.Post("/:kind", ah.Book)
	b.Get("/:kind/:id", ah.Detail(""))
	b.Post("/:kind/:id/cancel", ah.Cancel)
}

func (r *Router) registerEmployeeRoutes(app fiber.Router, ah *handler.AppointmentHandler, dh *handler.DashboardHandler, guard guardFunc) {
	ext := app.Group(handler.HomeDomicileEmployee, guard(authorize.Require(authorize.RoleDomicileEmployee)))
	ext.Get("/", ah.List)
	ext.Get("/dashboard", dh.Overview)
	ext.Get("/appointments/:id", ah.Detail(appointment.KindDomicile))
	ext.Post("/appointments/:id/claim", ah.Claim)
	ext.Put("/appointments/:id/status", ah.UpdateStatus(appointment.KindDomicile))

	in := app.Group(handler.HomeLocationEmployee, guard(authorize.Require(authorize.RoleLocationEmployee)))
	in.Get("/", ah.List)
	in.Get("/dashboard", dh.Overview)
	in.Get("/appointments/:id", ah.Detail(appointment.KindLocation))
	in.Put("/appointments/:id/status", ah.UpdateStatus(appointment.KindLocation))
}
