package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/pkg/credentials"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

const (
	DefaultVisitorCookie = "carwash_vid"
	LocalVisitorID       = "visitor_id"
)

type VisitorConfig struct {
	CookieName string
	Secure     bool
}

// Visitor identifies the browser by a sealed cookie. The visitor id is the key
// under which the credential pair is stored; a missing or unreadable cookie
// gets a fresh id (and therefore no credentials).
func Visitor(sealer *credentials.Sealer, cfg VisitorConfig) fiber.Handler {
	name := cfg.CookieName
	if name == "" {
		name = DefaultVisitorCookie
	}

	return func(c fiber.Ctx) error {
		vid, err := sealer.Open(c.Cookies(name))
		if err != nil {
			vid = credentials.NewVisitorID()
			c.Cookie(&fiber.Cookie{
				Name:     name,
				Value:    sealer.Seal(vid),
				Path:     "/",
				Expires:  time.Now().Add(sealer.TTL()),
				HTTPOnly: true,
				Secure:   cfg.Secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(LocalVisitorID, vid)
		c.SetContext(reqctx.WithVisitor(c.Context(), vid))
		return c.Next()
	}
}

func VisitorFromFiber(c fiber.Ctx) string {
	v, _ := c.Locals(LocalVisitorID).(string)
	return v
}
