// Package session owns the authenticated identity and its transitions.
// Dependent stores subscribe to transitions instead of polling; every
// published state carries a fresh epoch so in-flight work issued under an
// older session can be recognized and discarded.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/api"
	"storefront/internal/session/credentials"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/sentinel"
)

// Status is the lifecycle state of the session.
type Status string

const (
	// StatusResolving: a persisted credential is being confirmed upstream.
	// Dependents must not treat this as anonymous, or they would flash
	// empty state before hydration completes.
	StatusResolving Status = "resolving"

	StatusAnonymous     Status = "anonymous"
	StatusAuthenticated Status = "authenticated"
)

// Session is an immutable snapshot of the current identity.
type Session struct {
	Status Status
	User   api.User
	// Epoch changes on every transition. Work issued under one epoch must
	// be discarded if the current epoch differs when it resolves.
	Epoch uuid.UUID
}

// Authenticated reports whether the snapshot carries an identity.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// AuthAPI is the slice of the remote client the manager needs.
type AuthAPI interface {
	SignUp(ctx context.Context, email, password, fullName string) (api.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (api.AuthResult, error)
	SignOut(ctx context.Context) error
	Me(ctx context.Context) (api.User, error)
}

// Manager resolves, holds, and transitions the session.
type Manager struct {
	client   AuthAPI
	creds    credentials.Store
	tokens   *TokenCache
	logger   *slog.Logger
	deviceID string

	mu      sync.RWMutex
	current Session
	subs    map[int]func(Session)
	nextSub int
}

// NewManager builds a Manager in the resolving state; call Start to settle
// it.
func NewManager(client AuthAPI, creds credentials.Store, tokens *TokenCache, deviceID string, logger *slog.Logger) *Manager {
	return &Manager{
		client:   client,
		creds:    creds,
		tokens:   tokens,
		logger:   logger,
		deviceID: deviceID,
		current:  Session{Status: StatusResolving, Epoch: uuid.New()},
		subs:     make(map[int]func(Session)),
	}
}

// Current returns the session snapshot.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token implements api.TokenSource via the shared cache.
func (m *Manager) Token() (string, bool) {
	return m.tokens.Token()
}

// Subscribe registers a named transition handler and returns its
// unsubscribe function. Handlers run synchronously on the publishing
// goroutine, outside the manager lock.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publish(status Status, user api.User) Session {
	m.mu.Lock()
	next := Session{Status: status, User: user, Epoch: uuid.New()}
	m.current = next
	handlers := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		handlers = append(handlers, fn)
	}
	m.mu.Unlock()

	for _, fn := range handlers {
		fn(next)
	}
	return next
}

// Start resolves the persisted credential, if any. Resolution failure is
// not an error to the caller: the session settles to anonymous and the
// stale credential is discarded.
func (m *Manager) Start(ctx context.Context) Session {
	cred, err := m.creds.Load(ctx, m.deviceID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			m.logger.WarnContext(ctx, "credential load failed", "error", err)
		}
		return m.publish(StatusAnonymous, api.User{})
	}

	if tokenExpired(cred.Token, time.Now()) {
		m.logger.InfoContext(ctx, "persisted credential expired, discarding")
		m.discard(ctx)
		return m.publish(StatusAnonymous, api.User{})
	}

	m.tokens.Set(cred.Token)
	user, err := m.client.Me(ctx)
	if err != nil {
		m.logger.InfoContext(ctx, "credential rejected upstream, discarding", "error", err)
		m.discard(ctx)
		return m.publish(StatusAnonymous, api.User{})
	}

	return m.publish(StatusAuthenticated, user)
}

// SignIn authenticates against the upstream API and publishes the new
// identity.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Session, error) {
	res, err := m.client.SignIn(ctx, email, password)
	if err != nil {
		return m.Current(), translateAuthErr(err, "sign in failed")
	}
	return m.adopt(ctx, res), nil
}

// SignUp registers a new account and publishes the new identity.
func (m *Manager) SignUp(ctx context.Context, email, password, fullName string) (Session, error) {
	res, err := m.client.SignUp(ctx, email, password, fullName)
	if err != nil {
		return m.Current(), translateAuthErr(err, "sign up failed")
	}
	return m.adopt(ctx, res), nil
}

// SignOut ends the session. The remote call is best-effort, as upstream
// treats logout as advisory; local state always collapses to anonymous.
func (m *Manager) SignOut(ctx context.Context) Session {
	if err := m.client.SignOut(ctx); err != nil {
		m.logger.WarnContext(ctx, "remote sign-out failed, continuing locally", "error", err)
	}
	m.discard(ctx)
	return m.publish(StatusAnonymous, api.User{})
}

func (m *Manager) adopt(ctx context.Context, res api.AuthResult) Session {
	m.tokens.Set(res.AccessToken)
	err := m.creds.Save(ctx, m.deviceID, credentials.Credential{
		Token:   res.AccessToken,
		SavedAt: time.Now(),
	})
	if err != nil {
		// A session that does not survive restart is still a session.
		m.logger.WarnContext(ctx, "credential persist failed", "error", err)
	}
	return m.publish(StatusAuthenticated, res.User)
}

func (m *Manager) discard(ctx context.Context) {
	m.tokens.Clear()
	if err := m.creds.Delete(ctx, m.deviceID); err != nil {
		m.logger.WarnContext(ctx, "credential delete failed", "error", err)
	}
}

func translateAuthErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrUnauthorized) {
		return dErrors.Wrap(dErrors.CodeAuthRequired, "invalid credentials", err)
	}
	return dErrors.Wrap(dErrors.CodeRemoteFailure, msg, err)
}
