package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/credentials"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

const (
	pathCurrentUser = "/current-user"
	pathLogin       = "/login"
	pathSignup      = "/signup/client"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     authorize.Role `json:"user_type"`
}

type SignupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type currentUser struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Resolve never fails: every problem degrades to the anonymous session.
	Resolve(ctx context.Context, visitorID string) reqctx.Actor
	Login(ctx context.Context, visitorID string, req LoginRequest) (reqctx.Actor, error)
	Signup(ctx context.Context, visitorID string, req SignupRequest) (reqctx.Actor, error)
	Logout(ctx context.Context, visitorID string) error
	// Expire drops the stored credential after the backend rejected it.
	Expire(ctx context.Context, visitorID string)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type sessionService struct {
	api   backend.API
	store credentials.Store
}

func New(api backend.API, store credentials.Store) Service {
	return &sessionService{api: api, store: store}
}

func anonymous(visitorID string) reqctx.Actor {
	return reqctx.Actor{Session: reqctx.Anonymous(), VisitorID: visitorID}
}

func (s *sessionService) Resolve(ctx context.Context, visitorID string) reqctx.Actor {
	if visitorID == "" {
		return anonymous("")
	}

	tokens, err := s.store.Load(ctx, visitorID)
	if err != nil {
		if !errors.Is(err, credentials.ErrNoCredential) {
			slog.WarnContext(ctx, "credential store unavailable", "error", err)
		}
		return anonymous(visitorID)
	}

	var me currentUser
	// Each protected request resolves from scratch; a failed lookup is not retried.
	err = s.api.Get(backend.WithoutRetry(ctx), tokens.Access, pathCurrentUser, nil, &me)
	if err != nil {
		// 403 is the everyday "not logged in any more" answer.
		if backend.StatusOf(err) == http.StatusForbidden {
			return anonymous(visitorID)
		}
		slog.WarnContext(ctx, "session resolution failed, dropping credential", "error", err)
		s.Expire(ctx, visitorID)
		return anonymous(visitorID)
	}

	role, err := authorize.ParseRole(me.Role)
	if err != nil || me.ID <= 0 {
		slog.WarnContext(ctx, "malformed current-user response, dropping credential",
			"role", me.Role, "id", me.ID)
		s.Expire(ctx, visitorID)
		return anonymous(visitorID)
	}

	return reqctx.Actor{
		Session:   reqctx.Authenticated(role, me.ID),
		VisitorID: visitorID,
		Token:     tokens.Access,
	}
}

func (s *sessionService) Login(ctx context.Context, visitorID string, req LoginRequest) (reqctx.Actor, error) {
	if visitorID == "" {
		return anonymous(""), ErrNoVisitor
	}

	req.Email = strings.TrimSpace(req.Email)
	verr := &backend.ValidationError{}
	if req.Email == "" {
		verr.Add("email", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if !req.Role.Valid() {
		verr.Add("user_type", "Unknown user type.")
	}
	if verr.HasErrors() {
		return anonymous(visitorID), verr
	}

	var tokens credentials.Tokens
	if err := s.api.Post(ctx, "", pathLogin, req, &tokens); err != nil {
		if errors.Is(err, backend.ErrAuthExpired) {
			return anonymous(visitorID), ErrInvalidCredentials
		}
		return anonymous(visitorID), fmt.Errorf("login: %w", err)
	}
	return s.establish(ctx, visitorID, tokens)
}

func (s *sessionService) Signup(ctx context.Context, visitorID string, req SignupRequest) (reqctx.Actor, error) {
	if visitorID == "" {
		return anonymous(""), ErrNoVisitor
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	verr := &backend.ValidationError{}
	if req.FullName == "" {
		verr.Add("full_name", "This field is required.")
	}
	if req.Email == "" {
		verr.Add("email", "This field is required.")
	}
	if len(req.Password) < 8 {
		verr.Add("password", "Password must be at least 8 characters.")
	}
	if verr.HasErrors() {
		return anonymous(visitorID), verr
	}

	var tokens credentials.Tokens
	if err := s.api.Post(ctx, "", pathSignup, req, &tokens); err != nil {
		return anonymous(visitorID), fmt.Errorf("signup: %w", err)
	}
	if tokens.Empty() {
		return s.Login(ctx, visitorID, LoginRequest{Email: req.Email, Password: req.Password, Role: authorize.RoleClient})
	}
	return s.establish(ctx, visitorID, tokens)
}

func (s *sessionService) establish(ctx context.Context, visitorID string, tokens credentials.Tokens) (reqctx.Actor, error) {
	if tokens.Empty() {
		return anonymous(visitorID), fmt.Errorf("login: %w", backend.ErrMalformedResponse)
	}
	if err := s.store.Save(ctx, visitorID, tokens); err != nil {
		return anonymous(visitorID), err
	}
	return s.Resolve(ctx, visitorID), nil
}

func (s *sessionService) Logout(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return nil
	}
	return s.store.Clear(ctx, visitorID)
}

func (s *sessionService) Expire(ctx context.Context, visitorID string) {
	if visitorID == "" {
		return
	}
	if err := s.store.Clear(ctx, visitorID); err != nil {
		slog.WarnContext(ctx, "failed to clear credential", "error", err)
	}
}
