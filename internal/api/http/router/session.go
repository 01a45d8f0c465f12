package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/handler"
)

func (r *Router) registerSessionRoutes(app fiber.Router, h *handler.SessionHandler, identify fiber.Handler) {
	app.Get("/session", identify, h.Current)

	app.Get("/login/:userType", h.LoginPage)
	app.Post("/login/:userType", h.Login)
	app.Post("/signup", h.Signup)
	app.Post("/logout", h.Logout)
}
