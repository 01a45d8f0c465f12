package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/carwash_portal/internal/service/session"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

// Role-prefixed home pages.
const (
	HomeClient           = "/booking"
	HomeDomicileEmployee = "/extern_employee"
	HomeLocationEmployee = "/intern_employee"
	HomeAdmin            = "/admin"
)

func HomePath(role authorize.Role) string {
	switch role {
	case authorize.RoleClient:
		return HomeClient
	case authorize.RoleDomicileEmployee:
		return HomeDomicileEmployee
	case authorize.RoleLocationEmployee:
		return HomeLocationEmployee
	case authorize.RoleAdmin:
		return HomeAdmin
	}
	return middleware.RootPath
}

type sessionView struct {
	reqctx.Session
	Home string `json:"home"`
}

func viewOf(s reqctx.Session) sessionView {
	return sessionView{Session: s, Home: HomePath(s.Role)}
}

type SessionHandler struct {
	failer
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{failer: failer{sessions: svc}, svc: svc}
}

// GET /session
func (h *SessionHandler) Current(c fiber.Ctx) error {
	return ok(c, viewOf(middleware.ActorFromFiber(c).Session))
}

// GET /login/:userType
func (h *SessionHandler) LoginPage(c fiber.Ctx) error {
	role, err := authorize.ParseRole(c.Params("userType"))
	if err != nil {
		return notFound(c, "unknown user type")
	}
	return ok(c, fiber.Map{
		"user_type":    role,
		"display_name": authorize.RoleDisplayNames[role],
	})
}

// POST /login/:userType
//
// The role the visitor logs in as need not match :userType; the guard of
// whatever page they open next decides.
func (h *SessionHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	role, _ := authorize.ParseRole(c.Params("userType"))

	actor, err := h.svc.Login(c.Context(), middleware.VisitorFromFiber(c), session.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
		Role:     role,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, viewOf(actor.Session))
}

// POST /signup
func (h *SessionHandler) Signup(c fiber.Ctx) error {
	var req session.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	actor, err := h.svc.Signup(c.Context(), middleware.VisitorFromFiber(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return created(c, viewOf(actor.Session))
}

// POST /logout
func (h *SessionHandler) Logout(c fiber.Ctx) error {
	if err := h.svc.Logout(c.Context(), middleware.VisitorFromFiber(c)); err != nil {
		return h.fail(c, err)
	}
	return ok(c, viewOf(reqctx.Anonymous()))
}
