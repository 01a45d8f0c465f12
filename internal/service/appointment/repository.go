package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// ListName selects which of a role's lists to fetch.
type ListName string

const (
	// ListMine is the viewer's open work: own bookings for clients, claimed
	// jobs for domicile employees, open location jobs for location employees.
	ListMine ListName = "mine"
	// ListUnclaimed is pending domicile jobs nobody has claimed yet.
	ListUnclaimed ListName = "unclaimed"
	// ListHistory is the viewer's completed and cancelled appointments.
	ListHistory ListName = "history"
	// ListAll is every appointment the viewer may see.
	ListAll ListName = "all"
)

func ParseListName(s string) (ListName, error) {
	switch l := ListName(s); l {
	case ListMine, ListUnclaimed, ListHistory, ListAll:
		return l, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedList, s)
}

// DefaultList is the list a role's dashboard opens on.
func DefaultList(role authorize.Role) ListName {
	if role == authorize.RoleAdmin {
		return ListAll
	}
	return ListMine
}

type ListQuery struct {
	List ListName
	Date string // admin only, YYYY-MM-DD
}

func (q ListQuery) scope(actor reqctx.Actor) string {
	return string(actor.Role) + ":" + strconv.FormatInt(actor.UserID, 10) + ":" + string(q.List) + ":" + q.Date
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Repository is the single place the two backend collections are fetched
// and merged.
type Repository interface {
	ListForRole(ctx context.Context, actor reqctx.Actor, q ListQuery) ([]Appointment, error)
	GetDetail(ctx context.Context, actor reqctx.Actor, key Key) (Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type source struct {
	kind Kind
	path string
}

type plan struct {
	sources []source
	admit   func(Appointment) bool
}

type repository struct {
	api   backend.API
	cache ListCache
}

func NewRepository(api backend.API, cache ListCache) Repository {
	if cache == nil {
		cache = NopCache{}
	}
	return &repository{api: api, cache: cache}
}

func collectionPath(kind Kind) string {
	return "/appointments/" + string(kind)
}

func detailPath(key Key) string {
	return collectionPath(key.Kind) + "/" + strconv.FormatInt(key.ID, 10)
}

func statusAdmit(list ListName) func(Appointment) bool {
	switch list {
	case ListMine:
		return func(a Appointment) bool { return !a.Status.Terminal() }
	case ListHistory:
		return func(a Appointment) bool { return a.Status.Terminal() }
	case ListUnclaimed:
		return func(a Appointment) bool { return !a.Claimed() && a.Status == StatusPending }
	}
	return func(Appointment) bool { return true }
}

// planFor maps a role and list onto backend endpoints and a local admission
// filter. Location results always come before domicile results.
func planFor(actor reqctx.Actor, list ListName) (plan, error) {
	admit := statusAdmit(list)

	switch actor.Role {
	case authorize.RoleClient:
		if list == ListUnclaimed {
			break
		}
		return plan{
			sources: []source{
				{KindLocation, collectionPath(KindLocation) + "/mine"},
				{KindDomicile, collectionPath(KindDomicile) + "/mine"},
			},
			admit: admit,
		}, nil

	case authorize.RoleDomicileEmployee:
		if list == ListUnclaimed {
			return plan{
				sources: []source{{KindDomicile, collectionPath(KindDomicile) + "/unclaimed"}},
				admit:   admit,
			}, nil
		}
		me := actor.UserID
		return plan{
			sources: []source{{KindDomicile, collectionPath(KindDomicile) + "/claimed"}},
			admit: func(a Appointment) bool {
				return a.ClaimedBy != nil && *a.ClaimedBy == me && admit(a)
			},
		}, nil

	case authorize.RoleLocationEmployee:
		if list == ListUnclaimed {
			break
		}
		return plan{
			sources: []source{{KindLocation, collectionPath(KindLocation)}},
			admit:   admit,
		}, nil

	case authorize.RoleAdmin:
		if list == ListUnclaimed {
			return plan{
				sources: []source{{KindDomicile, collectionPath(KindDomicile) + "/unclaimed"}},
				admit:   admit,
			}, nil
		}
		return plan{
			sources: []source{
				{KindLocation, collectionPath(KindLocation) + "/all"},
				{KindDomicile, collectionPath(KindDomicile) + "/all"},
			},
			admit: admit,
		}, nil
	}
	return plan{}, fmt.Errorf("%w: %s for role %q", ErrUnsupportedList, list, actor.Role)
}

func (r *repository) ListForRole(ctx context.Context, actor reqctx.Actor, q ListQuery) ([]Appointment, error) {
	if !actor.Authenticated {
		return nil, backend.ErrAuthExpired
	}
	if q.List == "" {
		q.List = DefaultList(actor.Role)
	}
	p, err := planFor(actor, q.List)
	if err != nil {
		return nil, err
	}

	scope := q.scope(actor)
	cached, gen, ok := r.cache.Get(ctx, scope)
	if ok {
		return cached, nil
	}

	var query map[string]string
	if q.Date != "" && actor.Role == authorize.RoleAdmin {
		query = map[string]string{"date": q.Date}
	}

	results := make([][]Appointment, len(p.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		g.Go(func() error {
			list, err := r.fetch(gctx, actor.Token, src, query)
			if err != nil {
				return err
			}
			results[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := lo.Filter(lo.Flatten(results), func(a Appointment, _ int) bool {
		return p.admit(a)
	})
	if !actor.Role.IsStaff() {
		merged = lo.Map(merged, func(a Appointment, _ int) Appointment {
			a.Client = nil
			return a
		})
	}

	r.cache.Set(ctx, scope, gen, merged)
	return merged, nil
}

func (r *repository) fetch(ctx context.Context, token string, src source, query map[string]string) ([]Appointment, error) {
	var body json.RawMessage
	if err := r.api.Get(ctx, token, src.path, query, &body); err != nil {
		return nil, fmt.Errorf("list %s appointments: %w", src.kind, err)
	}

	raws, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("list %s appointments: %w: %w", src.kind, backend.ErrMalformedResponse, err)
	}

	out := make([]Appointment, 0, len(raws))
	for _, raw := range raws {
		a, err := raw.normalize(src.kind)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable appointment",
				"kind", src.kind, "id", raw.ID, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// decodeList accepts a bare array or a paginated {"results": [...]} page.
func decodeList(body json.RawMessage) ([]rawAppointment, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var list []rawAppointment
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []rawAppointment `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (r *repository) GetDetail(ctx context.Context, actor reqctx.Actor, key Key) (Appointment, error) {
	if !key.Kind.Valid() {
		return Appointment{}, ErrUnknownKind
	}

	var raw rawAppointment
	if err := r.api.Get(ctx, actor.Token, detailPath(key), nil, &raw); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return Appointment{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Appointment{}, fmt.Errorf("get appointment %s: %w", key, err)
	}
	if raw.ID == 0 {
		raw.ID = key.ID
	}

	a, err := raw.normalize(key.Kind)
	if err != nil {
		return Appointment{}, fmt.Errorf("get appointment %s: %w", key, err)
	}
	if !actor.Role.IsStaff() {
		a.Client = nil
	}
	return a, nil
}
