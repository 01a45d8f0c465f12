package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

const (
	DateLayout   = "2006-01-02"
	MaxRangeDays = 62

	pathDailyStats   = "/admin/appointments/stats"
	pathDailyRevenue = "/admin/appointments/revenue"

	fanOut = 8
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Split is a backend aggregate over the two collections, which the backend
// names "i" (location) and "e" (domicile).
type Split struct {
	Location float64 `json:"location"`
	Domicile float64 `json:"domicile"`
	Total    float64 `json:"total"`
}

type rawSplit struct {
	I float64 `json:"i"`
	E float64 `json:"e"`
}

func (r rawSplit) split() Split {
	return Split{Location: r.I, Domicile: r.E, Total: r.I + r.E}
}

// Card is one independently loaded figure. A failed card carries Error and
// leaves the others intact.
type Card[T any] struct {
	Value *T     `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

func cardOf[T any](v T, err error) Card[T] {
	if err != nil {
		return Card[T]{Error: describe(err)}
	}
	return Card[T]{Value: &v}
}

type Day struct {
	Date  string `json:"date"`
	Split *Split `json:"split,omitempty"`
	Error string `json:"error,omitempty"`
}

type Panel struct {
	Days    []Day   `json:"days"`
	Total   float64 `json:"total"`
	Partial bool    `json:"partial"`
	Error   string  `json:"error,omitempty"`
}

type RangeStats struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Appointments Panel  `json:"appointments"`
	Revenue      Panel  `json:"revenue"`
}

type Overview struct {
	Summary           Card[Summary] `json:"summary"`
	Rating            Card[float64] `json:"rating"`
	TodayAppointments *Card[Split]  `json:"today_appointments,omitempty"`
	TodayRevenue      *Card[Split]  `json:"today_revenue,omitempty"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Overview(ctx context.Context, actor reqctx.Actor) (Overview, error)
	Range(ctx context.Context, actor reqctx.Actor, from, to string) (RangeStats, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type dashboardService struct {
	api  backend.API
	repo appointment.Repository
	auth authorize.IAuthorization
	now  func() time.Time
}

func New(api backend.API, repo appointment.Repository, auth authorize.IAuthorization) Service {
	return &dashboardService{api: api, repo: repo, auth: auth, now: time.Now}
}

func describe(err error) string {
	switch {
	case errors.Is(err, backend.ErrAuthExpired):
		return "session expired"
	case errors.Is(err, backend.ErrNotFound):
		return "not available"
	default:
		return "could not load"
	}
}

func (s *dashboardService) Overview(ctx context.Context, actor reqctx.Actor) (Overview, error) {
	if !actor.Authenticated {
		return Overview{}, backend.ErrAuthExpired
	}
	if err := s.auth.MustEnforce(ctx, actor.Role, authorize.ResourceStats, authorize.ActionRead); err != nil {
		return Overview{}, fmt.Errorf("%w: %w", ErrForbidden, err)
	}

	var (
		out   Overview
		list  []appointment.Appointment
		lerr  error
		today = s.now().Format(DateLayout)
		g     errgroup.Group
	)

	g.Go(func() error {
		list, lerr = s.repo.ListForRole(ctx, actor, appointment.ListQuery{List: appointment.ListAll})
		return nil
	})
	if actor.Role == authorize.RoleAdmin {
		g.Go(func() error {
			v, err := s.daily(ctx, actor.Token, pathDailyStats, today)
			c := cardOf(v, err)
			out.TodayAppointments = &c
			return nil
		})
		g.Go(func() error {
			v, err := s.daily(ctx, actor.Token, pathDailyRevenue, today)
			c := cardOf(v, err)
			out.TodayRevenue = &c
			return nil
		})
	}
	_ = g.Wait()

	if lerr != nil {
		slog.WarnContext(ctx, "dashboard list failed", "error", lerr)
		out.Summary = Card[Summary]{Error: describe(lerr)}
		out.Rating = Card[float64]{Error: describe(lerr)}
		return out, nil
	}

	out.Summary = cardOf(Summarize(list), nil)
	if avg, ok := AverageRating(list); ok {
		out.Rating = cardOf(avg, nil)
	}
	return out, nil
}

func (s *dashboardService) daily(ctx context.Context, token, path, date string) (Split, error) {
	var raw rawSplit
	if err := s.api.Get(ctx, token, path, map[string]string{"date": date}, &raw); err != nil {
		return Split{}, err
	}
	return raw.split(), nil
}

// Dates expands an inclusive from..to range.
func Dates(from, to string) ([]string, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("%w: from: %v", ErrInvalidRange, err)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("%w: to: %v", ErrInvalidRange, err)
	}
	if t.Before(f) {
		return nil, fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	days := int(t.Sub(f).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, fmt.Errorf("%w: at most %d days", ErrInvalidRange, MaxRangeDays)
	}

	out := make([]string, 0, days)
	for d := f; !d.After(t); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out, nil
}

func (s *dashboardService) Range(ctx context.Context, actor reqctx.Actor, from, to string) (RangeStats, error) {
	if !actor.Authenticated {
		return RangeStats{}, backend.ErrAuthExpired
	}
	if err := s.auth.MustEnforce(ctx, actor.Role, authorize.ResourceStats, authorize.ActionList); err != nil {
		return RangeStats{}, fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	dates, err := Dates(from, to)
	if err != nil {
		return RangeStats{}, err
	}

	counts := make([]Day, len(dates))
	revenue := make([]Day, len(dates))

	var g errgroup.Group
	g.SetLimit(fanOut)
	for i, date := range dates {
		g.Go(func() error {
			counts[i] = s.day(ctx, actor.Token, pathDailyStats, date)
			return nil
		})
		g.Go(func() error {
			revenue[i] = s.day(ctx, actor.Token, pathDailyRevenue, date)
			return nil
		})
	}
	_ = g.Wait()

	return RangeStats{
		From:         from,
		To:           to,
		Appointments: panelOf(counts),
		Revenue:      panelOf(revenue),
	}, nil
}

func (s *dashboardService) day(ctx context.Context, token, path, date string) Day {
	split, err := s.daily(ctx, token, path, date)
	if err != nil {
		slog.WarnContext(ctx, "daily aggregate failed", "path", path, "date", date, "error", err)
		return Day{Date: date, Error: describe(err)}
	}
	return Day{Date: date, Split: &split}
}

func panelOf(days []Day) Panel {
	p := Panel{Days: days}
	failed := 0
	for _, d := range days {
		if d.Split == nil {
			failed++
			continue
		}
		p.Total += d.Split.Total
	}
	switch {
	case failed == len(days) && failed > 0:
		p.Error = "could not load"
	case failed > 0:
		p.Partial = true
	}
	return p
}
