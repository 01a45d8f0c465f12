package reqctx

import (
	"context"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
)

// Session is the portal's belief about who is on the other end of a request.
// It is advisory only; the backend enforces its own authorization.
type Session struct {
	Authenticated bool           `json:"is_authenticated"`
	Role          authorize.Role `json:"role,omitempty"`
	UserID        int64          `json:"user_id,omitempty"`
}

// Anonymous is the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// Authenticated builds a session for a known role and user.
func Authenticated(role authorize.Role, userID int64) Session {
	return Session{Authenticated: true, Role: role, UserID: userID}
}

// Actor is a resolved Session together with the access token it was
// resolved from. Services receive it explicitly to make backend calls on the
// visitor's behalf.
type Actor struct {
	Session
	VisitorID string `json:"-"`
	Token     string `json:"-"`
}

// WithActor stores the resolved actor in the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

// ActorFromContext retrieves the actor set by the route guard.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(keyActor).(Actor)
	return a, ok
}

// SessionFromContext returns the session of the actor in ctx, or the
// anonymous session when no guard ran.
func SessionFromContext(ctx context.Context) Session {
	a, ok := ActorFromContext(ctx)
	if !ok {
		return Anonymous()
	}
	return a.Session
}

// IsAuthenticated returns true if an authenticated session exists in the context.
func IsAuthenticated(ctx context.Context) bool {
	return SessionFromContext(ctx).Authenticated
}

// WithVisitor stores the visitor id (the key of the credential pair).
func WithVisitor(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, keyVisitor, visitorID)
}

// VisitorFromContext returns the visitor id or "".
func VisitorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(keyVisitor).(string)
	return v
}
