// Package reqctx provides centralized request context management.
//
// This package is the single source of truth for request-scoped data:
// request metadata, the visitor id that keys the stored credential pair,
// and the Actor (resolved Session plus access token) set by the route guard.
//
// # Context Keys
//
// All context keys are private unexported types to prevent collisions.
// Access is provided through type-safe getter and setter functions.
//
// # Usage
//
// Setting values (typically in middleware):
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{
//	    RequestID: "abc-123",
//	    ClientIP:  "192.168.1.1",
//	})
//
//	ctx = reqctx.WithActor(ctx, actor)
//
// Getting values:
//
//	meta, ok := reqctx.RequestMetaFromContext(ctx)
//	if reqctx.IsAuthenticated(ctx) {
//	    s := reqctx.SessionFromContext(ctx)
//	}
//
// # Contracts
//
//   - RequestMeta is always set by HTTP middleware for all requests
//   - The visitor id is set for every request that passed the visitor middleware
//   - Actor is set only behind a route guard, and only when the guard let the
//     request through (authenticated, accepted role)
package reqctx
