// Package backendtest provides an in-process stand-in for the REST backend.
package backendtest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Alijeyrad/carwash_portal/pkg/backend"
)

type Call struct {
	Method string
	Path   string
	Token  string
	Query  map[string]string
	Body   any
}

// Responder produces the decoded payload for a call, or an error.
type Responder func(c Call) (any, error)

// Fake implements backend.API from registered routes. Unrouted calls fail
// with 404.
type Fake struct {
	mu     sync.Mutex
	routes map[string]Responder
	calls  []Call
}

var _ backend.API = (*Fake)(nil)

func New() *Fake {
	return &Fake{routes: make(map[string]Responder)}
}

func (f *Fake) On(method, path string, r Responder) *Fake {
	f.mu.Lock()
	f.routes[method+" "+path] = r
	f.mu.Unlock()
	return f
}

// Reply always answers with v.
func Reply(v any) Responder {
	return func(Call) (any, error) { return v, nil }
}

// Fail always answers with the given status.
func Fail(status int) Responder {
	return func(c Call) (any, error) {
		return nil, backend.NewError(c.Method, c.Path, status, nil)
	}
}

// FailWith answers with the given status and raw JSON body.
func FailWith(status int, body string) Responder {
	return func(c Call) (any, error) {
		return nil, backend.NewError(c.Method, c.Path, status, []byte(body))
	}
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) CallCount(method, path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *Fake) dispatch(c Call, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	r, ok := f.routes[c.Method+" "+c.Path]
	f.mu.Unlock()

	if !ok {
		return backend.NewError(c.Method, c.Path, http.StatusNotFound, nil)
	}
	v, err := r(c)
	if err != nil {
		return err
	}
	if out == nil || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *Fake) Get(_ context.Context, token, path string, query map[string]string, out any) error {
	return f.dispatch(Call{Method: http.MethodGet, Path: path, Token: token, Query: query}, out)
}

func (f *Fake) Post(_ context.Context, token, path string, body, out any) error {
	return f.dispatch(Call{Method: http.MethodPost, Path: path, Token: token, Body: body}, out)
}

func (f *Fake) Put(_ context.Context, token, path string, body, out any) error {
	return f.dispatch(Call{Method: http.MethodPut, Path: path, Token: token, Body: body}, out)
}

func (f *Fake) Delete(_ context.Context, token, path string) error {
	return f.dispatch(Call{Method: http.MethodDelete, Path: path, Token: token}, nil)
}
