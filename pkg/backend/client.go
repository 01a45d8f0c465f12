package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gofiber/fiber/v3/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/carwash_portal/config"
	"github.com/Alijeyrad/carwash_portal/pkg/reqctx"
)

const (
	tracerName      = "github.com/Alijeyrad/carwash_portal/pkg/backend"
	headerRequestID = "X-Request-Id"
)

// API is the surface services depend on.
type API interface {
	Get(ctx context.Context, token, path string, query map[string]string, out any) error
	Post(ctx context.Context, token, path string, body, out any) error
	Put(ctx context.Context, token, path string, body, out any) error
	Delete(ctx context.Context, token, path string) error
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	ReadRetries int
	RetryDelay  time.Duration
}

func FromCentralConfig(c config.BackendConfig) Config {
	cfg := Config{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		Timeout:     time.Duration(c.TimeoutSeconds) * time.Second,
		ReadRetries: c.ReadRetries,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg
}

// Client talks JSON to the REST backend. Reads are retried ReadRetries times
// on transient failures; writes are never retried.
type Client struct {
	cfg    Config
	http   *client.Client
	tracer trace.Tracer
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base url is empty")
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}

	hc := client.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &Client{cfg: cfg, http: hc, tracer: otel.Tracer(tracerName)}, nil
}

func NewFromCentral(c config.BackendConfig) (*Client, error) {
	return New(FromCentralConfig(c))
}

type noRetryKey struct{}

// WithoutRetry marks ctx so that reads made with it are sent exactly once.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retriesFor(ctx context.Context, configured int) uint {
	if off, _ := ctx.Value(noRetryKey{}).(bool); off || configured < 0 {
		return 0
	}
	return uint(configured)
}

func (c *Client) Get(ctx context.Context, token, path string, query map[string]string, out any) error {
	op := func() (struct{}, error) {
		err := c.do(ctx, http.MethodGet, token, path, query, nil, out, false)
		if err != nil && !errors.Is(err, ErrReadFailed) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.cfg.RetryDelay)),
		backoff.WithMaxTries(retriesFor(ctx, c.cfg.ReadRetries)+1),
	)
	return err
}

func (c *Client) Post(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, token, path, nil, body, out, true)
}

func (c *Client) Put(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, token, path, nil, body, out, true)
}

func (c *Client) Delete(ctx context.Context, token, path string) error {
	return c.do(ctx, http.MethodDelete, token, path, nil, nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, token, path string, query map[string]string, body, out any, mutation bool) error {
	ctx, span := c.tracer.Start(ctx, "backend "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	req := c.http.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		req.SetHeader(headerRequestID, rid)
	}
	for k, v := range query {
		req.SetParam(k, v)
	}
	if body != nil {
		req.SetJSON(body)
	}

	start := time.Now()
	var (
		resp *client.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = req.Get(path)
	case http.MethodPost:
		resp, err = req.Post(path)
	case http.MethodPut:
		resp, err = req.Put(path)
	case http.MethodDelete:
		resp, err = req.Delete(path)
	default:
		client.ReleaseRequest(req)
		return fmt.Errorf("backend: unsupported method %s", method)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		slog.WarnContext(ctx, "backend call failed", "method", method, "path", path, "error", err)
		sentinel := ErrReadFailed
		if mutation {
			sentinel = ErrMutationFailed
		}
		return &Error{Method: method, Path: path, Err: sentinel, Cause: err}
	}
	defer resp.Close()

	status := resp.StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", status))
	slog.DebugContext(ctx, "backend call",
		"method", method, "path", path, "status", status,
		"duration_ms", time.Since(start).Milliseconds())

	if err := classify(method, path, status, resp.Body(), mutation); err != nil {
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
		return err
	}

	raw := resp.Body()
	if out == nil || len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Method: method, Path: path, Status: status, Err: ErrMalformedResponse, Cause: err}
	}
	return nil
}
