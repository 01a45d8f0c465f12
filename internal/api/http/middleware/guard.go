package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/service/session"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

const (
	LocalActor = "actor"

	// RootPath is where authenticated visitors with the wrong role are sent.
	RootPath = "/"
)

type Outcome uint8

const (
	Allow Outcome = iota + 1
	RedirectLogin
	RedirectRoot
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	case RedirectRoot:
		return "root"
	}
	return "unknown"
}

// Decide is the gating rule for a protected route: the view is served iff the
// session is authenticated and its role is accepted. target is the redirect
// location for the two redirect outcomes.
func Decide(s reqctx.Session, q authorize.Requirement) (out Outcome, target string) {
	switch {
	case !s.Authenticated:
		return RedirectLogin, q.LoginPath()
	case !q.Accepted.Has(s.Role):
		return RedirectRoot, RootPath
	default:
		return Allow, ""
	}
}

// Identify resolves the session for the request without gating it. Handlers
// behind it can read the actor with ActorFromFiber.
func Identify(sessions session.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		attach(c, sessions.Resolve(c.Context(), VisitorFromFiber(c)))
		return c.Next()
	}
}

// Guard re-resolves the session on every request and lets it through only
// when Decide allows it. Redirects use 303 so the browser replaces the
// protected URL instead of re-posting to it.
func Guard(sessions session.Service, q authorize.Requirement) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor := sessions.Resolve(c.Context(), VisitorFromFiber(c))

		out, target := Decide(actor.Session, q)
		if out != Allow {
			return c.Redirect().Status(fiber.StatusSeeOther).To(target)
		}

		attach(c, actor)
		return c.Next()
	}
}

func attach(c fiber.Ctx, actor reqctx.Actor) {
	c.Locals(LocalActor, actor)
	c.SetContext(reqctx.WithActor(c.Context(), actor))
}

// ActorFromFiber returns the actor attached by Guard or Identify, or an
// anonymous one.
func ActorFromFiber(c fiber.Ctx) reqctx.Actor {
	if a, ok := c.Locals(LocalActor).(reqctx.Actor); ok {
		return a
	}
	return reqctx.Actor{VisitorID: VisitorFromFiber(c)}
}
