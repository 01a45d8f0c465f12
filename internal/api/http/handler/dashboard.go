package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/carwash_portal/internal/service/dashboard"
	"github.com/Alijeyrad/carwash_portal/internal/service/session"
)

type DashboardHandler struct {
	failer
	svc dashboard.Service
}

func NewDashboardHandler(sessions session.Service, svc dashboard.Service) *DashboardHandler {
	return &DashboardHandler{failer: failer{sessions: sessions}, svc: svc}
}

// GET /admin, /extern_employee/dashboard, /intern_employee/dashboard
//
// Cards fail independently; a failed card carries its own error and the
// response is still 200.
func (h *DashboardHandler) Overview(c fiber.Ctx) error {
	o, err := h.svc.Overview(c.Context(), middleware.ActorFromFiber(c))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, o)
}

// GET /admin/dashboard?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *DashboardHandler) Range(c fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	if to == "" {
		to = from
	}
	stats, err := h.svc.Range(c.Context(), middleware.ActorFromFiber(c), from, to)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, stats)
}
