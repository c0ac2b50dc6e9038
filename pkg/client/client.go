// Package client is the Go SDK for the register API. It keeps the bearer
// token fresh, retries a request once after a refresh, and trips a circuit
// breaker when the server keeps failing.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every request, refreshes included
const DefaultTimeout = 15 * time.Second

const refreshPath = "/api/v1/auth/refresh"

// errServerStatus marks 5xx answers so the breaker counts them
var errServerStatus = errors.New("server error")

type idempotencyKey struct{}

// WithIdempotencyKey attaches an Idempotency-Key to requests made with ctx
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

type rawResponse struct {
	status int
	body   []byte
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

// Client talks to the register API
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	breaker *gobreaker.CircuitBreaker[*rawResponse]
	refresh singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBreaker replaces the circuit breaker settings
func WithBreaker(st gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = gobreaker.NewCircuitBreaker[*rawResponse](st) }
}

// New creates a client for the API at baseURL
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*rawResponse](defaultBreakerSettings())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "colmado-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[client] breaker %s: %s -> %s", name, from, to)
		},
	}
}

// Login authenticates and stores the issued tokens
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out Tokens
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &out); err != nil {
		return err
	}
	return c.tokens.Save(out)
}

// Logout forgets the stored tokens
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// do sends an authenticated request. An expired access token is refreshed
// once and the request retried once with the new token.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	tok, err := c.tokens.Load()
	if err != nil {
		return err
	}

	err = c.call(ctx, method, path, tok.AccessToken, in, out)
	if !isTokenExpired(err) {
		return err
	}

	if err := c.refreshToken(ctx, tok.AccessToken); err != nil {
		return err
	}
	fresh, err := c.tokens.Load()
	if err != nil {
		return err
	}
	return c.call(ctx, method, path, fresh.AccessToken, in, out)
}

// refreshToken renews the token pair unless stale has already been
// replaced. Concurrent callers share one refresh call.
func (c *Client) refreshToken(ctx context.Context, stale string) error {
	cur, err := c.tokens.Load()
	if err != nil {
		return err
	}
	if cur.AccessToken != "" && cur.AccessToken != stale {
		return nil
	}

	// the shared call must not die with the first caller's context
	shared := context.WithoutCancel(ctx)
	ch := c.refresh.DoChan("refresh", func() (any, error) {
		cur, err := c.tokens.Load()
		if err != nil {
			return nil, err
		}
		if cur.AccessToken != "" && cur.AccessToken != stale {
			return nil, nil
		}
		if cur.RefreshToken == "" {
			return nil, ErrSessionEnded
		}

		var next Tokens
		body := map[string]string{"refresh_token": cur.RefreshToken}
		if err := c.call(shared, http.MethodPost, refreshPath, "", body, &next); err != nil {
			log.Printf("[client] token refresh failed: %v", err)
			if cerr := c.tokens.Clear(); cerr != nil {
				log.Printf("[client] clear tokens: %v", cerr)
			}
			return nil, ErrSessionEnded
		}
		if next.RefreshToken == "" {
			next.RefreshToken = cur.RefreshToken
		}
		return nil, c.tokens.Save(next)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call performs one HTTP round trip through the breaker and decodes the
// envelope's data into out.
func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	raw, err := c.breaker.Execute(func() (*rawResponse, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if key, ok := ctx.Value(idempotencyKey{}).(string); ok && key != "" {
			req.Header.Set("Idempotency-Key", key)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		raw := &rawResponse{status: resp.StatusCode, body: data}
		if resp.StatusCode >= 500 {
			return raw, errServerStatus
		}
		return raw, nil
	})
	if err != nil && !errors.Is(err, errServerStatus) {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return decode(raw, out)
}

func decode(raw *rawResponse, out any) error {
	var env envelope
	if len(raw.body) > 0 {
		if err := json.Unmarshal(raw.body, &env); err != nil && raw.status < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if raw.status < 200 || raw.status >= 300 {
		return &APIError{
			Status:  raw.status,
			Code:    env.Code,
			Message: env.Message,
			Fields:  env.Errors,
		}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
