// Package cart mirrors the upstream cart as a read model. Refresh is the
// only reconciliation primitive: mutations go to the upstream API and then
// re-fetch, because cart pricing gates payment and must never drift from
// server state. Count and subtotal are recomputed from fetched lines every
// time, never incremented locally.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"storefront/internal/api"
	"storefront/internal/platform/metrics"
	"storefront/internal/session"
	dErrors "storefront/pkg/domain-errors"
)

// RemoteClient is the slice of the store API this package needs.
type RemoteClient interface {
	Cart(ctx context.Context) ([]api.CartLine, error)
}

// SessionSource exposes the current session snapshot.
type SessionSource interface {
	Current() session.Session
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics enables refresh/discard counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Store holds the cart aggregate for the current session.
type Store struct {
	client   RemoteClient
	sessions SessionSource
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu       sync.RWMutex
	lines    []api.CartLine
	count    int
	subtotal float64
	loading  bool
}

func New(client RemoteClient, sessions SessionSource, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		client:   client,
		sessions: sessions,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ValidateQuantity guards cart mutations client-side. A request to set a
// quantity below 1 is rejected before any network call; removal is the only
// path to zero.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return dErrors.New(dErrors.CodeValidationFailed, "quantity must be at least 1").
			WithFields(map[string]string{"quantity": "must be at least 1"})
	}
	return nil
}

// Refresh reconciles local state with the upstream cart. Anonymous sessions
// collapse to an empty cart without a network call. Authenticated sessions
// fetch all lines and recompute the aggregate from them; a cached count is
// never trusted. Results issued under a session epoch that has since
// changed are dropped.
func (s *Store) Refresh(ctx context.Context) error {
	snap := s.sessions.Current()
	switch snap.Status {
	case session.StatusResolving:
		return nil
	case session.StatusAnonymous:
		s.mu.Lock()
		s.lines = nil
		s.count = 0
		s.subtotal = 0
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	s.setLoading(true)
	lines, err := s.client.Cart(ctx)
	s.setLoading(false)

	if err != nil {
		s.countRefresh("error")
		return dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to load cart", err)
	}

	count := 0
	subtotal := 0.0
	for _, line := range lines {
		count += line.Quantity
		subtotal += line.Product.Price * float64(line.Quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Epoch != s.sessions.Current().Epoch {
		s.logger.DebugContext(ctx, "discarding stale cart result",
			"issued_epoch", snap.Epoch.String())
		if s.metrics != nil {
			s.metrics.StaleRefreshDrops.WithLabelValues("cart").Inc()
		}
		return nil
	}
	s.lines = lines
	s.count = count
	s.subtotal = subtotal
	s.countRefresh("ok")
	return nil
}

// Count is the settled aggregate quantity over the last fetched lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Subtotal is Σ price×quantity over the last fetched lines.
func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotal
}

// Lines returns a copy of the last fetched cart lines.
func (s *Store) Lines() []api.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) countRefresh(outcome string) {
	if s.metrics != nil {
		s.metrics.StoreRefreshes.WithLabelValues("cart", outcome).Inc()
	}
}
