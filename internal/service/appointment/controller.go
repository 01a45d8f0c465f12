package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	Kind     Kind   `json:"-"`
	CarType  string `json:"car_type"`
	CarName  string `json:"car_name"`
	WashType string `json:"wash_type"`
	Place    string `json:"place"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type createBody struct {
	CarType  CarType  `json:"car_type"`
	CarName  string   `json:"car_name"`
	WashType WashType `json:"wash_type"`
	Place    string   `json:"place,omitempty"`
	Date     string   `json:"date,omitempty"`
	Time     string   `json:"time"`
	Price    float64  `json:"price"`
	Status   Status   `json:"status"`
}

type statusBody struct {
	Status Status `json:"status"`
}

type claimBody struct {
	EmployeeID int64 `json:"employee_id"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Controller performs every appointment mutation. Each one is sent exactly
// once; on success every cached list is invalidated.
type Controller interface {
	Book(ctx context.Context, actor reqctx.Actor, req BookRequest) (Appointment, error)
	Claim(ctx context.Context, actor reqctx.Actor, key Key) (Appointment, error)
	UpdateStatus(ctx context.Context, actor reqctx.Actor, key Key, next Status) (Appointment, error)
	Cancel(ctx context.Context, actor reqctx.Actor, key Key) (Appointment, error)
	// Options lists the statuses actor may move a to. Views offer only these.
	Options(ctx context.Context, actor reqctx.Actor, a Appointment) []Status
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Deps struct {
	API       backend.API
	Repo      Repository
	Auth      authorize.IAuthorization
	Cache     ListCache
	InFlight  InFlight
	Publisher Publisher
}

type controller struct {
	api       backend.API
	repo      Repository
	auth      authorize.IAuthorization
	cache     ListCache
	inflight  InFlight
	publisher Publisher
}

func NewController(d Deps) Controller {
	c := &controller{
		api:       d.API,
		repo:      d.Repo,
		auth:      d.Auth,
		cache:     d.Cache,
		inflight:  d.InFlight,
		publisher: d.Publisher,
	}
	if c.cache == nil {
		c.cache = NopCache{}
	}
	if c.publisher == nil {
		c.publisher = NopPublisher{}
	}
	return c
}

func resourceOf(kind Kind) authorize.Resource {
	if kind == KindDomicile {
		return authorize.ResourceDomicileAppointment
	}
	return authorize.ResourceLocationAppointment
}

func (c *controller) allowed(ctx context.Context, actor reqctx.Actor, kind Kind, action authorize.Action) error {
	if !actor.Authenticated {
		return backend.ErrAuthExpired
	}
	err := c.auth.MustEnforce(ctx, actor.Role, resourceOf(kind), action)
	if errors.Is(err, authorize.ErrForbidden) {
		return fmt.Errorf("%w: %s may not %s %s appointments", ErrForbidden, actor.Role, action, kind)
	}
	return err
}

func (c *controller) acquire(ctx context.Context, actor reqctx.Actor, key Key) (func(), error) {
	if c.inflight == nil {
		return func() {}, nil
	}
	return c.inflight.Acquire(ctx, actor.VisitorID, key)
}

func (c *controller) mutated(ctx context.Context, key Key) {
	c.invalidate(ctx)
	c.publisher.Publish(ctx, key)
}

// invalidate drops local lists only. Used when another actor is known to
// have changed a row, so the next read re-fetches instead of hitting cache.
func (c *controller) invalidate(ctx context.Context) {
	if err := c.cache.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "list cache invalidation failed", "error", err)
	}
}

// decodeResult prefers the record the backend returned and falls back to
// the locally known one.
func decodeResult(raw rawAppointment, kind Kind, fallback Appointment) Appointment {
	if raw.ID == 0 {
		return fallback
	}
	a, err := raw.normalize(kind)
	if err != nil {
		return fallback
	}
	if a.Client == nil {
		a.Client = fallback.Client
	}
	return a
}

func (c *controller) Book(ctx context.Context, actor reqctx.Actor, req BookRequest) (Appointment, error) {
	if !req.Kind.Valid() {
		return Appointment{}, ErrUnknownKind
	}
	if err := c.allowed(ctx, actor, req.Kind, authorize.ActionCreate); err != nil {
		return Appointment{}, err
	}

	verr := &backend.ValidationError{}
	car, ok := ParseCarType(req.CarType)
	if !ok {
		verr.Add("car_type", "Select a valid car type.")
	}
	wash, ok := ParseWashType(req.WashType)
	if !ok {
		verr.Add("wash_type", "Select a valid wash type.")
	}
	if strings.TrimSpace(req.CarName) == "" {
		verr.Add("car_name", "This field is required.")
	}
	if strings.TrimSpace(req.Time) == "" {
		verr.Add("time", "This field is required.")
	}
	if req.Kind == KindDomicile && strings.TrimSpace(req.Place) == "" {
		verr.Add("place", "An address is required for domicile washes.")
	}
	if verr.HasErrors() {
		return Appointment{}, verr
	}

	price, err := Price(req.Kind, car, wash)
	if err != nil {
		return Appointment{}, err
	}

	body := createBody{
		CarType:  car,
		CarName:  strings.TrimSpace(req.CarName),
		WashType: wash,
		Date:     req.Date,
		Time:     strings.TrimSpace(req.Time),
		Price:    price,
		Status:   StatusPending,
	}
	if req.Kind == KindDomicile {
		body.Place = strings.TrimSpace(req.Place)
	}

	var raw rawAppointment
	if err := c.api.Post(ctx, actor.Token, collectionPath(req.Kind), body, &raw); err != nil {
		return Appointment{}, fmt.Errorf("book %s appointment: %w", req.Kind, err)
	}

	local := Appointment{
		Kind:     req.Kind,
		Date:     body.Date,
		Time:     body.Time,
		Car:      Car{Type: car, Name: body.CarName},
		WashType: wash,
		Place:    body.Place,
		Price:    price,
		Status:   StatusPending,
	}
	a := decodeResult(raw, req.Kind, local)
	c.mutated(ctx, a.Key())
	return a, nil
}

func (c *controller) Claim(ctx context.Context, actor reqctx.Actor, key Key) (Appointment, error) {
	if key.Kind != KindDomicile {
		return Appointment{}, fmt.Errorf("%w: only domicile appointments are claimed", ErrNotClaimable)
	}
	if err := c.allowed(ctx, actor, key.Kind, authorize.ActionClaim); err != nil {
		return Appointment{}, err
	}

	release, err := c.acquire(ctx, actor, key)
	if err != nil {
		return Appointment{}, err
	}
	defer release()

	current, err := c.repo.GetDetail(ctx, actor, key)
	if err != nil {
		return Appointment{}, err
	}
	if current.Claimed() || current.Status != StatusPending {
		// A lost race looks the same as any other failed mutation.
		c.invalidate(ctx)
		return Appointment{}, fmt.Errorf("claim %s: %w: %w", key, backend.ErrMutationFailed, ErrNotClaimable)
	}

	var raw rawAppointment
	path := detailPath(key) + "/claim"
	if err := c.api.Post(ctx, actor.Token, path, claimBody{EmployeeID: actor.UserID}, &raw); err != nil {
		if errors.Is(err, backend.ErrMutationFailed) || errors.Is(err, backend.ErrValidation) {
			c.invalidate(ctx)
		}
		return Appointment{}, fmt.Errorf("claim %s: %w", key, err)
	}

	me := actor.UserID
	current.ClaimedBy = &me
	a := decodeResult(raw, key.Kind, current)
	if a.ClaimedBy == nil {
		a.ClaimedBy = &me
	}

	c.mutated(ctx, key)
	slog.InfoContext(ctx, "appointment claimed", "key", key.String(), "employee_id", me)
	return a, nil
}

func (c *controller) UpdateStatus(ctx context.Context, actor reqctx.Actor, key Key, next Status) (Appointment, error) {
	if !next.Valid() {
		return Appointment{}, ErrUnknownStatus
	}
	if err := c.allowed(ctx, actor, key.Kind, authorize.ActionUpdateStatus); err != nil {
		return Appointment{}, err
	}

	current, err := c.repo.GetDetail(ctx, actor, key)
	if err != nil {
		return Appointment{}, err
	}
	if err := checkOwnership(actor, current); err != nil {
		return Appointment{}, err
	}
	if !CanTransition(current.Status, next) {
		return Appointment{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, next)
	}

	return c.sendStatus(ctx, actor, current, next)
}

func (c *controller) Cancel(ctx context.Context, actor reqctx.Actor, key Key) (Appointment, error) {
	if actor.Role != authorize.RoleClient {
		return c.UpdateStatus(ctx, actor, key, StatusDeleted)
	}
	if err := c.allowed(ctx, actor, key.Kind, authorize.ActionCancel); err != nil {
		return Appointment{}, err
	}

	current, err := c.repo.GetDetail(ctx, actor, key)
	if err != nil {
		return Appointment{}, err
	}
	if current.Status != StatusPending {
		return Appointment{}, fmt.Errorf("%w: clients may only cancel pending bookings", ErrIllegalTransition)
	}
	return c.sendStatus(ctx, actor, current, StatusDeleted)
}

func (c *controller) sendStatus(ctx context.Context, actor reqctx.Actor, current Appointment, next Status) (Appointment, error) {
	key := current.Key()
	release, err := c.acquire(ctx, actor, key)
	if err != nil {
		return Appointment{}, err
	}
	defer release()

	var raw rawAppointment
	if err := c.api.Put(ctx, actor.Token, detailPath(key), statusBody{Status: next}, &raw); err != nil {
		return Appointment{}, fmt.Errorf("update %s to %s: %w", key, next, err)
	}

	updated := current
	updated.Status = next
	a := decodeResult(raw, key.Kind, updated)

	c.mutated(ctx, key)
	slog.InfoContext(ctx, "appointment status changed",
		"key", key.String(), "from", current.Status.String(), "to", a.Status.String(), "role", actor.Role)
	return a, nil
}

// checkOwnership: domicile jobs are worked only by the employee who claimed
// them; location jobs by any location employee; admins by anyone.
func checkOwnership(actor reqctx.Actor, a Appointment) error {
	if actor.Role != authorize.RoleDomicileEmployee || a.Kind != KindDomicile {
		return nil
	}
	if a.ClaimedBy == nil || *a.ClaimedBy != actor.UserID {
		return ErrNotClaimedByActor
	}
	return nil
}

func (c *controller) Options(ctx context.Context, actor reqctx.Actor, a Appointment) []Status {
	if actor.Role == authorize.RoleClient {
		if a.Status == StatusPending && c.allowed(ctx, actor, a.Kind, authorize.ActionCancel) == nil {
			return []Status{StatusDeleted}
		}
		return nil
	}
	if c.allowed(ctx, actor, a.Kind, authorize.ActionUpdateStatus) != nil {
		return nil
	}
	if checkOwnership(actor, a) != nil {
		return nil
	}
	return NextStatuses(a.Status)
}
