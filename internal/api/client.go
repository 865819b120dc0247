// Package api implements the client for the upstream storefront REST API.
// All durable commerce state (products, cart, favorites, orders) lives
// behind this API; the gateway only mirrors it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/platform/metrics"
	"storefront/pkg/sentinel"
)

// TokenSource supplies the current session credential, when one exists.
type TokenSource interface {
	Token() (string, bool)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests use this).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource attaches the bearer-token source for authenticated calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithMetrics enables per-call latency metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client talks to the upstream storefront API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New constructs a Client for the given base URL ("/api" is appended per
// upstream convention).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL + "/api",
		http:    &http.Client{Timeout: 15 * time.Second},
		tracer:  otel.Tracer("storefront/api"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// dataEnvelope matches the upstream success wrapper {"data": ..., "timestamp": ...}.
// Some endpoints return the payload bare; both shapes are accepted.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, op)
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, "transport_error", start)
		span.RecordError(err)
		return fmt.Errorf("%s: %v: %w", op, err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	c.observe(op, strconv.Itoa(resp.StatusCode), start)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, sentinel.ErrUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(op, resp.StatusCode, raw)
		span.RecordError(err)
		return err
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	payload := raw
	var env dataEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) observe(op, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RemoteCallDuration.WithLabelValues(op, status).
		Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// --- auth ---

func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, "auth.sign_up", http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	}, &res)
	return res, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, "auth.sign_in", http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	return res, err
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, "auth.sign_out", http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, "auth.me", http.MethodGet, "/users/me", nil, &user)
	return user, err
}

// --- catalog ---

func (c *Client) Products(ctx context.Context, lang string) ([]Product, error) {
	var products []Product
	err := c.do(ctx, "products.get_all", http.MethodGet, "/products"+langQuery(lang), nil, &products)
	return products, err
}

func (c *Client) FeaturedProducts(ctx context.Context, lang string) ([]Product, error) {
	var products []Product
	err := c.do(ctx, "products.get_featured", http.MethodGet, "/products/featured"+langQuery(lang), nil, &products)
	return products, err
}

func (c *Client) ProductBySlug(ctx context.Context, slug, lang string) (Product, error) {
	var product Product
	err := c.do(ctx, "products.get_by_slug", http.MethodGet,
		"/products/slug/"+url.PathEscape(slug)+langQuery(lang), nil, &product)
	return product, err
}

func langQuery(lang string) string {
	if lang == "" {
		return ""
	}
	return "?lang=" + url.QueryEscape(lang)
}

// --- cart ---

func (c *Client) Cart(ctx context.Context) ([]CartLine, error) {
	var lines []CartLine
	err := c.do(ctx, "cart.get", http.MethodGet, "/cart", nil, &lines)
	return lines, err
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int, variant map[string]string) error {
	return c.do(ctx, "cart.add", http.MethodPost, "/cart", map[string]any{
		"productId":       productID,
		"quantity":        quantity,
		"selectedVariant": variant,
	}, nil)
}

func (c *Client) UpdateCartLine(ctx context.Context, lineID string, quantity int, variant map[string]string) error {
	return c.do(ctx, "cart.update", http.MethodPatch, "/cart/"+url.PathEscape(lineID), map[string]any{
		"quantity":        quantity,
		"selectedVariant": variant,
	}, nil)
}

func (c *Client) RemoveCartLine(ctx context.Context, lineID string) error {
	return c.do(ctx, "cart.remove", http.MethodDelete, "/cart/"+url.PathEscape(lineID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, "cart.clear", http.MethodDelete, "/cart", nil, nil)
}

// --- favorites ---

func (c *Client) FavoriteIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.do(ctx, "favorites.get_ids", http.MethodGet, "/favorites/ids", nil, &ids)
	return ids, err
}

func (c *Client) AddFavorite(ctx context.Context, productID string) error {
	return c.do(ctx, "favorites.add", http.MethodPost, "/favorites", map[string]string{
		"productId": productID,
	}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, productID string) error {
	return c.do(ctx, "favorites.remove", http.MethodDelete, "/favorites/"+url.PathEscape(productID), nil, nil)
}

// --- orders ---

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	var order Order
	err := c.do(ctx, "orders.create", http.MethodPost, "/orders", req, &order)
	return order, err
}
