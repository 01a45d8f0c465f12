package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/carwash_portal/internal/service/account"
	"github.com/Alijeyrad/carwash_portal/internal/service/session"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
)

type AccountHandler struct {
	failer
	svc account.Service
}

func NewAccountHandler(sessions session.Service, svc account.Service) *AccountHandler {
	return &AccountHandler{failer: failer{sessions: sessions}, svc: svc}
}

func idParam(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// roleParam reads a role route parameter; extern/intern spellings are accepted.
func roleParam(c fiber.Ctx, name string) (authorize.Role, error) {
	return authorize.ParseRole(c.Params(name))
}

// GET /profile/:role/:id
func (h *AccountHandler) GetProfile(c fiber.Ctx) error {
	role, err := roleParam(c, "role")
	if err != nil {
		return notFound(c, "not found")
	}
	id, valid := idParam(c)
	if !valid {
		return notFound(c, "not found")
	}

	p, err := h.svc.Get(c.Context(), middleware.ActorFromFiber(c), role, id)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, p)
}

// PUT /profile/:role/:id
func (h *AccountHandler) UpdateProfile(c fiber.Ctx) error {
	role, err := roleParam(c, "role")
	if err != nil {
		return notFound(c, "not found")
	}
	id, valid := idParam(c)
	if !valid {
		return notFound(c, "not found")
	}
	var req account.UpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Update(c.Context(), middleware.ActorFromFiber(c), role, id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, p)
}

// GET /admin/accounts/:role
func (h *AccountHandler) List(c fiber.Ctx) error {
	role, err := roleParam(c, "role")
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.svc.List(c.Context(), middleware.ActorFromFiber(c), role)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, list)
}

// POST /admin/accounts/:employeeKind
func (h *AccountHandler) AddEmployee(c fiber.Ctx) error {
	role, err := roleParam(c, "employeeKind")
	if err != nil {
		return h.fail(c, err)
	}
	var req account.NewEmployeeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.AddEmployee(c.Context(), middleware.ActorFromFiber(c), role, req)
	if err != nil {
		return h.fail(c, err)
	}
	return created(c, p)
}

// RemoveClient serves DELETE /admin/client/:id.
func (h *AccountHandler) RemoveClient(c fiber.Ctx) error {
	return h.remove(c, authorize.RoleClient)
}

// RemoveEmployee serves DELETE /admin/:employeeKind/:id. extern and intern
// are accepted for the two employee kinds.
func (h *AccountHandler) RemoveEmployee(c fiber.Ctx) error {
	role, err := roleParam(c, "employeeKind")
	if err != nil {
		return h.fail(c, err)
	}
	if !role.IsEmployee() {
		return h.fail(c, account.ErrNotAnEmployee)
	}
	return h.remove(c, role)
}

func (h *AccountHandler) remove(c fiber.Ctx, role authorize.Role) error {
	id, valid := idParam(c)
	if !valid {
		return notFound(c, "not found")
	}
	if err := h.svc.Remove(c.Context(), middleware.ActorFromFiber(c), role, id); err != nil {
		return h.fail(c, err)
	}
	return noContent(c)
}
