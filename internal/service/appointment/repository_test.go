package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/backend/backendtest"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

func TestListForRole_TagsAndMerges(t *testing.T) {
	loc1 := record(1, "Pending", nil)
	loc1["kind"] = "domicile" // ignored: kind is never read from the payload
	api := backendtest.New().
		On(http.MethodGet, "/appointments/location/all", backendtest.Reply([]any{loc1, record(2, "Completed", nil)})).
		On(http.MethodGet, "/appointments/domicile/all", backendtest.Reply(map[string]any{
			"results": []any{record(1, "In Progress", 9)},
		}))
	repo := NewRepository(api, nil)

	list, err := repo.ListForRole(context.Background(), actorFor(authorize.RoleAdmin, 1), ListQuery{})
	if err != nil {
		t.Fatalf("ListForRole() error = %v", err)
	}

	want := []Key{{KindLocation, 1}, {KindLocation, 2}, {KindDomicile, 1}}
	got := keys(list)
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	for _, a := range list {
		if !a.Kind.Valid() {
			t.Errorf("appointment %d has no kind", a.ID)
		}
		if a.Client == nil {
			t.Errorf("admin view of %s lacks client info", a.Key())
		}
	}
}

func TestListForRole_Dispatch(t *testing.T) {
	tests := []struct {
		name  string
		role  authorize.Role
		list  ListName
		paths []string
	}{
		{"client default", authorize.RoleClient, "", []string{"/appointments/location/mine", "/appointments/domicile/mine"}},
		{"client history", authorize.RoleClient, ListHistory, []string{"/appointments/location/mine", "/appointments/domicile/mine"}},
		{"domicile mine", authorize.RoleDomicileEmployee, ListMine, []string{"/appointments/domicile/claimed"}},
		{"domicile unclaimed", authorize.RoleDomicileEmployee, ListUnclaimed, []string{"/appointments/domicile/unclaimed"}},
		{"location all", authorize.RoleLocationEmployee, ListAll, []string{"/appointments/location"}},
		{"admin default", authorize.RoleAdmin, "", []string{"/appointments/location/all", "/appointments/domicile/all"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := backendtest.New()
			for _, p := range tt.paths {
				api.On(http.MethodGet, p, backendtest.Reply([]any{}))
			}
			repo := NewRepository(api, nil)

			if _, err := repo.ListForRole(context.Background(), actorFor(tt.role, 5), ListQuery{List: tt.list}); err != nil {
				t.Fatalf("ListForRole() error = %v", err)
			}
			calls := api.Calls()
			if len(calls) != len(tt.paths) {
				t.Fatalf("calls = %+v, want paths %v", calls, tt.paths)
			}
			for _, p := range tt.paths {
				if api.CallCount(http.MethodGet, p) != 1 {
					t.Errorf("expected one GET %s", p)
				}
			}
			if calls[0].Token != "tok-5" {
				t.Errorf("token = %q", calls[0].Token)
			}
		})
	}
}

func TestListForRole_Admission(t *testing.T) {
	api := backendtest.New().
		On(http.MethodGet, "/appointments/location/mine", backendtest.Reply([]any{
			record(1, "Pending", nil), record(2, "Completed", nil), record(3, "Archived", nil),
		})).
		On(http.MethodGet, "/appointments/domicile/mine", backendtest.Reply([]any{record(4, "Deleted", nil)}))
	repo := NewRepository(api, nil)
	client := actorFor(authorize.RoleClient, 1)

	open, err := repo.ListForRole(context.Background(), client, ListQuery{List: ListMine})
	if err != nil {
		t.Fatalf("ListForRole(mine) error = %v", err)
	}
	if len(open) != 1 || open[0].ID != 1 {
		t.Errorf("mine = %v, want only location 1", keys(open))
	}
	if open[0].Client != nil {
		t.Error("client views must not carry client info")
	}

	history, err := repo.ListForRole(context.Background(), client, ListQuery{List: ListHistory})
	if err != nil {
		t.Fatalf("ListForRole(history) error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history = %v, want location 2 and domicile 4", keys(history))
	}
}

func TestListForRole_DomicileMineOnlyOwnClaims(t *testing.T) {
	api := backendtest.New().
		On(http.MethodGet, "/appointments/domicile/claimed", backendtest.Reply([]any{
			record(1, "Pending", 42), record(2, "Pending", 7), record(3, "Completed", 42),
		}))
	repo := NewRepository(api, nil)

	list, err := repo.ListForRole(context.Background(), actorFor(authorize.RoleDomicileEmployee, 42), ListQuery{List: ListMine})
	if err != nil {
		t.Fatalf("ListForRole() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != 1 {
		t.Errorf("mine = %v, want domicile 1", keys(list))
	}
}

func TestListForRole_Errors(t *testing.T) {
	t.Run("one failing collection fails the list", func(t *testing.T) {
		api := backendtest.New().
			On(http.MethodGet, "/appointments/location/all", backendtest.Reply([]any{})).
			On(http.MethodGet, "/appointments/domicile/all", backendtest.Fail(http.StatusInternalServerError))
		repo := NewRepository(api, nil)

		_, err := repo.ListForRole(context.Background(), actorFor(authorize.RoleAdmin, 1), ListQuery{})
		if !errors.Is(err, backend.ErrReadFailed) {
			t.Errorf("error = %v, want ErrReadFailed", err)
		}
	})

	t.Run("unsupported list", func(t *testing.T) {
		repo := NewRepository(backendtest.New(), nil)
		_, err := repo.ListForRole(context.Background(), actorFor(authorize.RoleClient, 1), ListQuery{List: ListUnclaimed})
		if !errors.Is(err, ErrUnsupportedList) {
			t.Errorf("error = %v, want ErrUnsupportedList", err)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		repo := NewRepository(backendtest.New(), nil)
		_, err := repo.ListForRole(context.Background(), reqctx.Actor{}, ListQuery{})
		if !errors.Is(err, backend.ErrAuthExpired) {
			t.Errorf("error = %v, want ErrAuthExpired", err)
		}
	})
}

func TestListForRole_AdminDate(t *testing.T) {
	api := backendtest.New().
		On(http.MethodGet, "/appointments/location/all", backendtest.Reply([]any{})).
		On(http.MethodGet, "/appointments/domicile/all", backendtest.Reply([]any{}))
	repo := NewRepository(api, nil)

	if _, err := repo.ListForRole(context.Background(), actorFor(authorize.RoleAdmin, 1), ListQuery{Date: "2024-06-01"}); err != nil {
		t.Fatalf("ListForRole() error = %v", err)
	}
	for _, c := range api.Calls() {
		if c.Query["date"] != "2024-06-01" {
			t.Errorf("%s sent date %q", c.Path, c.Query["date"])
		}
	}
}

func TestListForRole_Cache(t *testing.T) {
	api := backendtest.New().
		On(http.MethodGet, "/appointments/location", backendtest.Reply([]any{record(1, "Pending", nil)}))
	cache := NewMemoryCache(time.Minute)
	repo := NewRepository(api, cache)
	actor := actorFor(authorize.RoleLocationEmployee, 3)
	ctx := context.Background()

	for range 2 {
		if _, err := repo.ListForRole(ctx, actor, ListQuery{}); err != nil {
			t.Fatalf("ListForRole() error = %v", err)
		}
	}
	if n := api.CallCount(http.MethodGet, "/appointments/location"); n != 1 {
		t.Errorf("backend calls = %d, want 1 (second served from cache)", n)
	}

	_ = cache.Invalidate(ctx)
	if _, err := repo.ListForRole(ctx, actor, ListQuery{}); err != nil {
		t.Fatalf("ListForRole() error = %v", err)
	}
	if n := api.CallCount(http.MethodGet, "/appointments/location"); n != 2 {
		t.Errorf("backend calls = %d, want 2 after invalidation", n)
	}
}

func TestGetDetail(t *testing.T) {
	api := backendtest.New().
		On(http.MethodGet, "/appointments/domicile/5", backendtest.Reply(record(5, "Pending", nil)))
	repo := NewRepository(api, nil)
	ctx := context.Background()

	a, err := repo.GetDetail(ctx, actorFor(authorize.RoleAdmin, 1), Key{KindDomicile, 5})
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if a.Key() != (Key{KindDomicile, 5}) || a.Price != 300 {
		t.Errorf("GetDetail() = %+v", a)
	}

	_, err = repo.GetDetail(ctx, actorFor(authorize.RoleAdmin, 1), Key{KindLocation, 5})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, gen, _ := c.Get(ctx, "s")
	c.Set(ctx, "s", gen, []Appointment{{Kind: KindLocation, ID: 1, Status: StatusPending}})
	if _, _, ok := c.Get(ctx, "s"); !ok {
		t.Fatal("expected hit")
	}

	now = now.Add(2 * time.Minute)
	if _, _, ok := c.Get(ctx, "s"); ok {
		t.Error("expected expiry")
	}
}

func TestMemoryCache_OutdatedGeneration(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, gen, _ := c.Get(ctx, "s")
	_ = c.Invalidate(ctx)
	c.Set(ctx, "s", gen, []Appointment{{Kind: KindDomicile, ID: 1, Status: StatusPending}})
	if _, _, ok := c.Get(ctx, "s"); ok {
		t.Error("list fetched before the invalidation was stored")
	}

	_, gen, _ = c.Get(ctx, "s")
	c.Set(ctx, "s", gen, nil)
	if _, _, ok := c.Get(ctx, "s"); !ok {
		t.Error("list fetched under the current generation was dropped")
	}
}

// A list fetch that is still in flight when a claim lands must not put the
// pre-claim list back into the cache.
func TestListForRole_FetchOverlappingClaim(t *testing.T) {
	ctx := context.Background()
	b := newDomicileBackend(record(1, "Pending", nil))
	cache := NewMemoryCache(time.Minute)
	ctrl, repo := newController(t, b.fake, cache)

	fetched := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	b.fake.On(http.MethodGet, "/appointments/domicile/unclaimed", func(backendtest.Call) (any, error) {
		raw, err := json.Marshal(b.filter(func(r map[string]any) bool { return r["claimed_by"] == nil }))
		if err != nil {
			return nil, err
		}
		once.Do(func() {
			close(fetched)
			<-release
		})
		return json.RawMessage(raw), nil
	})

	viewer := actorFor(authorize.RoleDomicileEmployee, 7)
	done := make(chan error, 1)
	go func() {
		_, err := repo.ListForRole(ctx, viewer, ListQuery{List: ListUnclaimed})
		done <- err
	}()

	<-fetched
	if _, err := ctrl.Claim(ctx, actorFor(authorize.RoleDomicileEmployee, 42), Key{KindDomicile, 1}); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("ListForRole() error = %v", err)
	}

	list, err := repo.ListForRole(ctx, viewer, ListQuery{List: ListUnclaimed})
	if err != nil {
		t.Fatalf("ListForRole() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("unclaimed after claim = %v, want empty", keys(list))
	}
}
