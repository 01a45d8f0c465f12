package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
	"github.com/Alijeyrad/carwash_portal/internal/service/session"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

// appointmentView is an appointment as views render it: with its composite
// key and the statuses the viewer may move it to.
type appointmentView struct {
	appointment.Appointment
	Ref     string               `json:"key"`
	Options []appointment.Status `json:"options"`
}

type listView struct {
	List         appointment.ListName `json:"list"`
	Appointments []appointmentView    `json:"appointments"`
	// Total counts the list before the filter was applied.
	Total int `json:"total"`
}

type AppointmentHandler struct {
	failer
	repo appointment.Repository
	ctl  appointment.Controller
}

func NewAppointmentHandler(sessions session.Service, repo appointment.Repository, ctl appointment.Controller) *AppointmentHandler {
	return &AppointmentHandler{failer: failer{sessions: sessions}, repo: repo, ctl: ctl}
}

func (h *AppointmentHandler) view(ctx context.Context, actor reqctx.Actor, a appointment.Appointment) appointmentView {
	opts := h.ctl.Options(ctx, actor, a)
	if opts == nil {
		opts = []appointment.Status{}
	}
	return appointmentView{Appointment: a, Ref: a.Key().String(), Options: opts}
}

func queryGetter(c fiber.Ctx) func(string) string {
	return func(key string) string { return c.Query(key) }
}

// keyFrom reads the appointment key from the route. A fixed kind is used for
// role-prefixed routes that only ever carry one kind.
func keyFrom(c fiber.Ctx, kind appointment.Kind) (appointment.Key, error) {
	k := string(kind)
	if k == "" {
		k = c.Params("kind")
	}
	return appointment.NewKey(k, c.Params("id"))
}

// GET /booking, /extern_employee, /intern_employee, /admin/appointments
//
// Query: list, date (admin), q, status, kind, car_type, wash_type.
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	actor := middleware.ActorFromFiber(c)

	list, err := appointment.ParseListName(c.Query("list"))
	if err != nil {
		return h.fail(c, err)
	}
	if list == "" {
		list = appointment.DefaultList(actor.Role)
	}
	filter, err := appointment.FilterFromQuery(queryGetter(c))
	if err != nil {
		return h.fail(c, err)
	}

	all, err := h.repo.ListForRole(c.Context(), actor, appointment.ListQuery{List: list, Date: c.Query("date")})
	if err != nil {
		return h.fail(c, err)
	}

	matched := filter.Apply(all)
	views := make([]appointmentView, 0, len(matched))
	for _, a := range matched {
		views = append(views, h.view(c.Context(), actor, a))
	}
	return ok(c, listView{List: list, Appointments: views, Total: len(all)})
}

// Detail serves GET .../:id (or .../:kind/:id when kind is empty).
func (h *AppointmentHandler) Detail(kind appointment.Kind) fiber.Handler {
	return func(c fiber.Ctx) error {
		key, err := keyFrom(c, kind)
		if err != nil {
			return h.fail(c, err)
		}
		actor := middleware.ActorFromFiber(c)

		a, err := h.repo.GetDetail(c.Context(), actor, key)
		if err != nil {
			return h.fail(c, err)
		}
		return ok(c, h.view(c.Context(), actor, a))
	}
}

// POST /booking/:kind
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	kind, err := appointment.ParseKind(c.Params("kind"))
	if err != nil {
		return h.fail(c, err)
	}
	var req appointment.BookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.Kind = kind

	actor := middleware.ActorFromFiber(c)
	a, err := h.ctl.Book(c.Context(), actor, req)
	if err != nil {
		return h.fail(c, err)
	}
	return created(c, h.view(c.Context(), actor, a))
}

// GET /booking/quote?kind=&car_type=&wash_type=
func (h *AppointmentHandler) Quote(c fiber.Ctx) error {
	kind, err := appointment.ParseKind(c.Query("kind"))
	if err != nil {
		return h.fail(c, err)
	}
	car, okCar := appointment.ParseCarType(c.Query("car_type"))
	wash, okWash := appointment.ParseWashType(c.Query("wash_type"))
	if !okCar || !okWash {
		return badRequest(c, "unknown car or wash type")
	}
	price, err := appointment.Price(kind, car, wash)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.Map{"kind": kind, "car_type": car, "wash_type": wash, "price": price})
}

// POST /extern_employee/appointments/:id/claim
func (h *AppointmentHandler) Claim(c fiber.Ctx) error {
	key, err := keyFrom(c, appointment.KindDomicile)
	if err != nil {
		return h.fail(c, err)
	}
	actor := middleware.ActorFromFiber(c)

	a, err := h.ctl.Claim(c.Context(), actor, key)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, h.view(c.Context(), actor, a))
}

// UpdateStatus serves PUT .../:id/status with body {"status": "..."}.
func (h *AppointmentHandler) UpdateStatus(kind appointment.Kind) fiber.Handler {
	return func(c fiber.Ctx) error {
		key, err := keyFrom(c, kind)
		if err != nil {
			return h.fail(c, err)
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		next, err := appointment.ParseStatus(body.Status)
		if err != nil {
			return h.fail(c, err)
		}
		actor := middleware.ActorFromFiber(c)

		a, err := h.ctl.UpdateStatus(c.Context(), actor, key, next)
		if err != nil {
			return h.fail(c, err)
		}
		return ok(c, h.view(c.Context(), actor, a))
	}
}

// POST /booking/:kind/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	key, err := keyFrom(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	actor := middleware.ActorFromFiber(c)

	a, err := h.ctl.Cancel(c.Context(), actor, key)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, h.view(c.Context(), actor, a))
}
