package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

func newTestClient(t *testing.T, h http.Handler, retries int) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, ReadRetries: retries, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("Expected error for empty base url")
	}
}

func TestGet_DecodesAndSendsBearer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		if got := r.URL.Query().Get("date"); got != "2024-05-01" {
			t.Errorf("date param = %q", got)
		}
		if got := r.Header.Get("X-Request-Id"); got != "rid-7" {
			t.Errorf("X-Request-Id = %q, want rid-7", got)
		}
		_, _ = w.Write([]byte(`{"id": 42, "role": "client"}`))
	}), 0)

	var out struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "rid-7"})
	err := c.Get(ctx, "tok", "/current-user", map[string]string{"date": "2024-05-01"}, &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.ID != 42 || out.Role != "client" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestGet_RetriesTransientOnce(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}), 1)

	var out []any
	if err := c.Get(context.Background(), "", "/appointments/location", nil, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGet_DoesNotRetryPermanent(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"forbidden", http.StatusForbidden, ErrAuthExpired},
		{"unauthorized", http.StatusUnauthorized, ErrAuthExpired},
		{"not found", http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}), 3)

			err := c.Get(context.Background(), "tok", "/x", nil, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if StatusOf(err) != tt.status {
				t.Errorf("StatusOf = %d, want %d", StatusOf(err), tt.status)
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1", calls.Load())
			}
		})
	}
}

func TestGet_WithoutRetry(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), 3)

	err := c.Get(WithoutRetry(context.Background()), "", "/current-user", nil, nil)
	if !errors.Is(err, ErrReadFailed) {
		t.Fatalf("error = %v, want ErrReadFailed", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), 1)

	err := c.Get(context.Background(), "", "/x", nil, nil)
	if !errors.Is(err, ErrReadFailed) {
		t.Fatalf("error = %v, want ErrReadFailed", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGet_MalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}), 0)

	var out map[string]any
	err := c.Get(context.Background(), "", "/current-user", nil, &out)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestPost_NeverRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), 3)

	err := c.Post(context.Background(), "tok", "/appointments/domicile/1/claim", nil, nil)
	if !errors.Is(err, ErrMutationFailed) {
		t.Fatalf("error = %v, want ErrMutationFailed", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestPost_SendsJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["status"] != "Pending" {
			t.Errorf("status = %v", body["status"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 9}`))
	}), 0)

	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.Post(context.Background(), "tok", "/appointments/location", map[string]string{"status": "Pending"}, &out); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if out.ID != 9 {
		t.Errorf("id = %d, want 9", out.ID)
	}
}

func TestPut_ValidationErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email": ["already taken"], "phone": "invalid"}`))
	}), 0)

	err := c.Put(context.Background(), "tok", "/profile/client/1", map[string]string{}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	fields := FieldErrors(err)
	if fields["email"] != "already taken" || fields["phone"] != "invalid" {
		t.Errorf("fields = %v", fields)
	}
}

func TestDelete_FieldlessClientErrorIsMutationFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail": "already claimed"}`))
	}), 0)

	err := c.Delete(context.Background(), "tok", "/admin/client/3")
	if !errors.Is(err, ErrMutationFailed) {
		t.Errorf("error = %v, want ErrMutationFailed", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Error("detail-only body must not be a validation error")
	}
}

func TestParseFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{"list messages", `{"age": ["too low", "not a number"]}`, map[string]string{"age": "too low; not a number"}},
		{"nested errors", `{"errors": {"email": "bad"}}`, map[string]string{"email": "bad"}},
		{"detail only", `{"detail": "nope"}`, nil},
		{"not json", `oops`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFieldErrors([]byte(tt.body))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
