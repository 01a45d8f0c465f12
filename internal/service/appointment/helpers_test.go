package appointment

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/backend/backendtest"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

func newAuth(t *testing.T) authorize.IAuthorization {
	t.Helper()
	e, err := authorize.NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	auth, err := authorize.NewAuthorization(e)
	if err != nil {
		t.Fatalf("NewAuthorization() error = %v", err)
	}
	if err := authorize.SeedDefaultPolicies(context.Background(), auth); err != nil {
		t.Fatalf("SeedDefaultPolicies() error = %v", err)
	}
	return auth
}

func actorFor(role authorize.Role, id int64) reqctx.Actor {
	return reqctx.Actor{
		Session:   reqctx.Authenticated(role, id),
		VisitorID: "visitor-" + strconv.FormatInt(id, 10),
		Token:     "tok-" + strconv.FormatInt(id, 10),
	}
}

// record is a backend payload; it deliberately has no "kind".
func record(id int64, status string, claimedBy any) map[string]any {
	return map[string]any{
		"id":          id,
		"time":        "09:00",
		"car_type":    "SUV",
		"car_name":    "X5",
		"wash_type":   "full",
		"place":       "1 Main St",
		"price":       300,
		"status":      status,
		"claimed_by":  claimedBy,
		"client_info": map[string]any{"id": 1, "full_name": "Ann Client", "email": "ann@example.com"},
	}
}

// domicileBackend is a tiny stateful backend for domicile jobs.
type domicileBackend struct {
	mu   sync.Mutex
	recs map[int64]map[string]any
	fake *backendtest.Fake
}

func newDomicileBackend(recs ...map[string]any) *domicileBackend {
	b := &domicileBackend{recs: make(map[int64]map[string]any), fake: backendtest.New()}
	for _, r := range recs {
		id := r["id"].(int64)
		b.recs[id] = r
		b.route(id)
	}

	b.fake.On(http.MethodGet, "/appointments/domicile/unclaimed", func(backendtest.Call) (any, error) {
		return b.filter(func(r map[string]any) bool { return r["claimed_by"] == nil }), nil
	})
	b.fake.On(http.MethodGet, "/appointments/domicile/claimed", func(backendtest.Call) (any, error) {
		return b.filter(func(r map[string]any) bool { return r["claimed_by"] != nil }), nil
	})
	return b
}

func (b *domicileBackend) filter(keep func(map[string]any) bool) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []map[string]any{}
	for id := int64(1); id <= int64(len(b.recs)); id++ {
		if r, ok := b.recs[id]; ok && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (b *domicileBackend) route(id int64) {
	path := "/appointments/domicile/" + strconv.FormatInt(id, 10)

	b.fake.On(http.MethodGet, path, func(backendtest.Call) (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.recs[id], nil
	})
	b.fake.On(http.MethodPost, path+"/claim", func(c backendtest.Call) (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.recs[id]["claimed_by"] != nil {
			return nil, backend.NewError(c.Method, c.Path, http.StatusConflict, []byte(`{"detail": "already claimed"}`))
		}
		b.recs[id]["claimed_by"] = c.Body.(claimBody).EmployeeID
		return b.recs[id], nil
	})
	b.fake.On(http.MethodPut, path, func(c backendtest.Call) (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.recs[id]["status"] = c.Body.(statusBody).Status.String()
		return b.recs[id], nil
	})
}

func newController(t *testing.T, api backend.API, cache ListCache) (Controller, Repository) {
	t.Helper()
	repo := NewRepository(api, cache)
	ctrl := NewController(Deps{
		API:      api,
		Repo:     repo,
		Auth:     newAuth(t),
		Cache:    cache,
		InFlight: NewMemoryInFlight(time.Minute),
	})
	return ctrl, repo
}
