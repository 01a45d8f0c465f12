package reqctx

import (
	"context"
	"testing"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
)

func TestSessionFromContext_Default(t *testing.T) {
	s := SessionFromContext(context.Background())
	if s.Authenticated || s.Role != "" || s.UserID != 0 {
		t.Errorf("SessionFromContext() = %+v, want anonymous", s)
	}
	if IsAuthenticated(context.Background()) {
		t.Error("IsAuthenticated() on empty context should be false")
	}
}

func TestActorRoundTrip(t *testing.T) {
	a := Actor{Session: Authenticated(authorize.RoleAdmin, 9), VisitorID: "v1", Token: "tok"}
	ctx := WithActor(context.Background(), a)

	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("ActorFromContext() not found")
	}
	if got != a {
		t.Errorf("ActorFromContext() = %+v, want %+v", got, a)
	}
	if !IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() should be true")
	}
}

func TestVisitorRoundTrip(t *testing.T) {
	ctx := WithVisitor(context.Background(), "visitor-1")
	if got := VisitorFromContext(ctx); got != "visitor-1" {
		t.Errorf("VisitorFromContext() = %q", got)
	}
	if got := VisitorFromContext(context.Background()); got != "" {
		t.Errorf("VisitorFromContext() on empty = %q", got)
	}
}
