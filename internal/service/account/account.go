package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Profile is owned by the backend; the portal only reads it and round-trips
// edits.
type Profile struct {
	ID          int64          `json:"id"`
	Role        authorize.Role `json:"role"`
	FullName    string         `json:"full_name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Age         int            `json:"age,omitempty"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	FinalRating *float64       `json:"final_rating,omitempty"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Age      int    `json:"age"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type NewEmployeeRequest struct {
	UpdateProfileRequest
	Password string `json:"password"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Get(ctx context.Context, actor reqctx.Actor, role authorize.Role, id int64) (Profile, error)
	Update(ctx context.Context, actor reqctx.Actor, role authorize.Role, id int64, req UpdateProfileRequest) (Profile, error)

	// Admin
	List(ctx context.Context, actor reqctx.Actor, role authorize.Role) ([]Profile, error)
	AddEmployee(ctx context.Context, actor reqctx.Actor, role authorize.Role, req NewEmployeeRequest) (Profile, error)
	Remove(ctx context.Context, actor reqctx.Actor, role authorize.Role, id int64) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type accountService struct {
	api    backend.API
	auth   authorize.IAuthorization
	region string
}

func New(api backend.API, auth authorize.IAuthorization, phoneRegion string) Service {
	if phoneRegion == "" {
		phoneRegion = "US"
	}
	return &accountService{api: api, auth: auth, region: phoneRegion}
}

func profilePath(role authorize.Role, id int64) string {
	return "/profile/" + string(role) + "/" + strconv.FormatInt(id, 10)
}

func adminPath(role authorize.Role) string {
	return "/admin/" + string(role)
}

// mayAccess: admins reach every profile, everybody else only their own.
func (s *accountService) mayAccess(ctx context.Context, actor reqctx.Actor, role authorize.Role, id int64, action authorize.Action) error {
	if !actor.Authenticated {
		return backend.ErrAuthExpired
	}
	if err := s.auth.MustEnforce(ctx, actor.Role, authorize.ResourceProfile, action); err != nil {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	if actor.Role == authorize.RoleAdmin {
		return nil
	}
	if actor.Role != role || actor.UserID != id {
		return ErrForbidden
	}
	return nil
}

func (s *accountService) adminOnly(ctx context.Context, actor reqctx.Actor, action authorize.Action) error {
	if !actor.Authenticated {
		return backend.ErrAuthExpired
	}
	if err := s.auth.MustEnforce(ctx, actor.Role, authorize.ResourceAccount, action); err != nil {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func (s *accountService) Get(ctx context.Context, actor reqctx.Actor, role authorize.Role, id int64) (Profile, error) {
	if err := s.mayAccess(ctx, actor, role, id, authorize.ActionRead); err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := s.api.Get(ctx, actor.Token, profilePath(role, id), nil, &p); err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", notFound(err))
	}
	if p.ID == 0 {
		p.ID = id
	}
	p.Role = role
	return p, nil
}

func (s *accountService) validate(req *UpdateProfileRequest) *backend.ValidationError {
	verr := &backend.ValidationError{}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)

	if req.FullName == "" {
		verr.Add("full_name", "This field is required.")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		verr.Add("email", "Enter a valid email address.")
	}
	if phone, ok := NormalizePhone(req.Phone, s.region); ok {
		req.Phone = phone
	} else {
		verr.Add("phone", "Enter a valid phone number.")
	}
	if req.Age < 0 || req.Age > 130 {
		verr.Add("age", "Enter a valid age.")
	}
	return verr
}

func (s *accountService) Update(ctx context.Context, actor reqctx.Actor, role authorize.Role, id int64, req UpdateProfileRequest) (Profile, error) {
	if err := s.mayAccess(ctx, actor, role, id, authorize.ActionUpdate); err != nil {
		return Profile{}, err
	}
	if actor.Role != role || actor.UserID != id {
		// Admins view other profiles but edit only their own.
		return Profile{}, ErrForbidden
	}
	if verr := s.validate(&req); verr.HasErrors() {
		return Profile{}, verr
	}

	var p Profile
	if err := s.api.Put(ctx, actor.Token, profilePath(role, id), req, &p); err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", notFound(err))
	}
	if p.ID == 0 {
		p = Profile{ID: id, FullName: req.FullName, Email: req.Email, Phone: req.Phone, Age: req.Age, PhotoURL: req.PhotoURL}
	}
	p.Role = role
	return p, nil
}

func (s *accountService) List(ctx context.Context, actor reqctx.Actor, role authorize.Role) ([]Profile, error) {
	if err := s.adminOnly(ctx, actor, authorize.ActionList); err != nil {
		return nil, err
	}
	if !role.Valid() || role == authorize.RoleAdmin {
		return nil, fmt.Errorf("%w: %q", authorize.ErrUnknownRole, role)
	}

	var out []Profile
	if err := s.api.Get(ctx, actor.Token, adminPath(role), nil, &out); err != nil {
		return nil, fmt.Errorf("list %s accounts: %w", role, err)
	}
	for i := range out {
		out[i].Role = role
	}
	return out, nil
}

func (s *accountService) AddEmployee(ctx context.Context, actor reqctx.Actor, role authorize.Role, req NewEmployeeRequest) (Profile, error) {
	if err := s.adminOnly(ctx, actor, authorize.ActionCreate); err != nil {
		return Profile{}, err
	}
	if !role.IsEmployee() {
		return Profile{}, ErrNotAnEmployee
	}

	verr := s.validate(&req.UpdateProfileRequest)
	if len(req.Password) < 8 {
		verr.Add("password", "Password must be at least 8 characters.")
	}
	if verr.HasErrors() {
		return Profile{}, verr
	}

	var p Profile
	if err := s.api.Post(ctx, actor.Token, adminPath(role), req, &p); err != nil {
		return Profile{}, fmt.Errorf("add %s: %w", role, err)
	}
	p.Role = role
	slog.InfoContext(ctx, "employee account created", "role", role, "id", p.ID)
	return p, nil
}

func (s *accountService) Remove(ctx context.Context, actor reqctx.Actor, role authorize.Role, id int64) error {
	if err := s.adminOnly(ctx, actor, authorize.ActionDelete); err != nil {
		return err
	}
	if role != authorize.RoleClient && !role.IsEmployee() {
		return fmt.Errorf("%w: %q", authorize.ErrUnknownRole, role)
	}

	path := adminPath(role) + "/" + strconv.FormatInt(id, 10)
	if err := s.api.Delete(ctx, actor.Token, path); err != nil {
		return fmt.Errorf("remove %s %d: %w", role, id, notFound(err))
	}
	slog.InfoContext(ctx, "account removed", "role", role, "id", id)
	return nil
}
