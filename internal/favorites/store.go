// Package favorites owns the set of favorited product IDs, mirrored from
// the upstream store. Mutations are confirmed remotely before the local set
// changes, so a failed call never leaves an optimistic guess behind.
package favorites

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"storefront/internal/platform/metrics"
	"storefront/internal/session"
	dErrors "storefront/pkg/domain-errors"
)

// RemoteClient is the slice of the store API this package needs.
type RemoteClient interface {
	FavoriteIDs(ctx context.Context) ([]string, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error
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

// Store holds the favorite set for the current session.
type Store struct {
	client   RemoteClient
	sessions SessionSource
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	ids     map[string]struct{}
	loading bool
}

func New(client RemoteClient, sessions SessionSource, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		client:   client,
		sessions: sessions,
		logger:   logger,
		ids:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Refresh replaces the local set wholesale with the upstream snapshot. The
// last server fetch always wins over stale local state. Results are tagged
// with the session epoch they were issued under; if the session changed
// while the call was in flight, the result is dropped.
func (s *Store) Refresh(ctx context.Context) error {
	snap := s.sessions.Current()
	switch snap.Status {
	case session.StatusResolving:
		// Not anonymous yet: leave state alone until the session settles.
		return nil
	case session.StatusAnonymous:
		s.mu.Lock()
		s.ids = make(map[string]struct{})
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	s.setLoading(true)
	ids, err := s.client.FavoriteIDs(ctx)
	s.setLoading(false)

	if err != nil {
		s.countRefresh("error")
		return dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to load favorites", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ctx, snap.Epoch.String()) {
		return nil
	}
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.countRefresh("ok")
	return nil
}

// Add favorites a product. Anonymous callers get CodeAuthRequired and no
// mutation happens; there is no optimistic update for logged-out users.
// The local set changes only after the remote call succeeds.
func (s *Store) Add(ctx context.Context, productID string) error {
	snap := s.sessions.Current()
	if !snap.Authenticated() {
		return dErrors.New(dErrors.CodeAuthRequired, "sign in to add favorites")
	}

	if err := s.client.AddFavorite(ctx, productID); err != nil {
		return dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to add favorite", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ctx, snap.Epoch.String()) {
		return nil
	}
	s.ids[productID] = struct{}{}
	return nil
}

// Remove unfavorites a product, remote-first like Add.
func (s *Store) Remove(ctx context.Context, productID string) error {
	snap := s.sessions.Current()
	if !snap.Authenticated() {
		return dErrors.New(dErrors.CodeAuthRequired, "sign in to manage favorites")
	}

	if err := s.client.RemoveFavorite(ctx, productID); err != nil {
		return dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to remove favorite", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ctx, snap.Epoch.String()) {
		return nil
	}
	delete(s.ids, productID)
	return nil
}

// Toggle dispatches to Add or Remove based on current membership. Two rapid
// toggles on the same product are not serialized; the last remote response
// wins and the next Refresh reconciles any transient mismatch.
func (s *Store) Toggle(ctx context.Context, productID string) error {
	if s.IsFavorite(productID) {
		return s.Remove(ctx, productID)
	}
	return s.Add(ctx, productID)
}

// IsFavorite is an O(1) membership query against the settled local set.
func (s *Store) IsFavorite(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[productID]
	return ok
}

// IDs returns the favorite set, sorted for stable output.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
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

// stale must be called with s.mu held. It compares the epoch a call was
// issued under against the current one and records the drop.
func (s *Store) stale(ctx context.Context, issuedEpoch string) bool {
	current := s.sessions.Current().Epoch.String()
	if issuedEpoch == current {
		return false
	}
	s.logger.DebugContext(ctx, "discarding stale favorites result",
		"issued_epoch", issuedEpoch, "current_epoch", current)
	if s.metrics != nil {
		s.metrics.StaleRefreshDrops.WithLabelValues("favorites").Inc()
	}
	return true
}

func (s *Store) countRefresh(outcome string) {
	if s.metrics != nil {
		s.metrics.StoreRefreshes.WithLabelValues("favorites", outcome).Inc()
	}
}
