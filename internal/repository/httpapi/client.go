// Package httpapi implements the remote note API over HTTP/JSON.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/notepad/internal/convert"
	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/limiter"
	"github.com/and161185/notepad/internal/repository"
)

const (
	// DefaultBaseURL is where the reference API listens in development.
	DefaultBaseURL = "http://localhost:5000"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	maxErrBody = 4 << 10
)

var (
	_ repository.NoteRepository = (*Client)(nil)
	_ repository.AuthRepository = (*Client)(nil)
)

// Client talks to the remote API.
type Client struct {
	base    *url.URL
	hc      *http.Client
	timeout time.Duration
	lim     limiter.Limiter
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLimiter throttles outgoing requests.
func WithLimiter(l limiter.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.lim = l
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New constructs a Client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:    u,
		timeout: DefaultTimeout,
		lim:     limiter.New(0, 0),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// do sends one JSON request. in may be nil; out may be nil to discard the body.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rid := newRequestID()
	fail := func(kind error, status int, msg string) error {
		return &errs.APIError{Kind: kind, Status: status, Message: msg, RequestID: rid}
	}

	if err := c.lim.Wait(ctx); err != nil {
		return fail(errs.ErrNetwork, 0, "rate limiter: "+err.Error())
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", rid)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("http",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("dur", time.Since(start)),
			zap.String("request_id", rid),
			zap.Error(err),
		)
		return fail(errs.ErrNetwork, 0, transportMessage(ctx, err))
	}
	defer resp.Body.Close()

	// no payloads in logs, metadata only
	c.log.Info("http",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
		zap.String("request_id", rid),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(errs.FromStatus(resp.StatusCode), resp.StatusCode, errorText(resp.Body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return fail(errs.ErrNetwork, resp.StatusCode, transportMessage(ctx, err))
		}
		return fail(errs.ErrNetwork, resp.StatusCode, "malformed response: "+err.Error())
	}
	return nil
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

func transportMessage(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout: " + err.Error()
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return "timeout: " + err.Error()
	}
	return err.Error()
}

// errorText extracts {message}/{error} from an error body, falling back to raw text.
func errorText(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrBody))
	var m convert.MessageResponse
	if json.Unmarshal(b, &m) == nil && m.Text() != "" {
		return m.Text()
	}
	return strings.TrimSpace(string(b))
}

func notePath(id string) string { return "/api/notes/" + url.PathEscape(id) }
