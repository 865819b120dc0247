package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/session/credentials"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/sentinel"
)

type fakeAuthAPI struct {
	signInRes  api.AuthResult
	signInErr  error
	signUpRes  api.AuthResult
	signUpErr  error
	signOutErr error
	meUser     api.User
	meErr      error
	meCalls    int
}

func (f *fakeAuthAPI) SignIn(context.Context, string, string) (api.AuthResult, error) {
	return f.signInRes, f.signInErr
}

func (f *fakeAuthAPI) SignUp(context.Context, string, string, string) (api.AuthResult, error) {
	return f.signUpRes, f.signUpErr
}

func (f *fakeAuthAPI) SignOut(context.Context) error {
	return f.signOutErr
}

func (f *fakeAuthAPI) Me(context.Context) (api.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString([]byte("upstream-key"))
	require.NoError(t, err)
	return token
}

func newManager(client AuthAPI) (*Manager, credentials.Store, *TokenCache) {
	creds := credentials.NewMemoryStore()
	tokens := NewTokenCache()
	return NewManager(client, creds, tokens, "device-1", testLogger()), creds, tokens
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("no credential settles anonymous without a remote call", func(t *testing.T) {
		client := &fakeAuthAPI{}
		mgr, _, _ := newManager(client)

		snap := mgr.Start(ctx)
		assert.Equal(t, StatusAnonymous, snap.Status)
		assert.Zero(t, client.meCalls)
	})

	t.Run("expired credential is discarded locally", func(t *testing.T) {
		client := &fakeAuthAPI{}
		mgr, creds, tokens := newManager(client)
		require.NoError(t, creds.Save(ctx, "device-1", credentials.Credential{
			Token: signedToken(t, time.Now().Add(-time.Hour)),
		}))

		snap := mgr.Start(ctx)
		assert.Equal(t, StatusAnonymous, snap.Status)
		assert.Zero(t, client.meCalls, "expired tokens are discarded without a round trip")

		_, ok := tokens.Token()
		assert.False(t, ok)
		_, err := creds.Load(ctx, "device-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("malformed credential counts as expired", func(t *testing.T) {
		client := &fakeAuthAPI{}
		mgr, creds, _ := newManager(client)
		require.NoError(t, creds.Save(ctx, "device-1", credentials.Credential{Token: "garbage"}))

		snap := mgr.Start(ctx)
		assert.Equal(t, StatusAnonymous, snap.Status)
		assert.Zero(t, client.meCalls)
	})

	t.Run("valid credential is confirmed upstream", func(t *testing.T) {
		client := &fakeAuthAPI{meUser: api.User{ID: "u1", Email: "ada@example.com"}}
		mgr, creds, tokens := newManager(client)
		require.NoError(t, creds.Save(ctx, "device-1", credentials.Credential{
			Token: signedToken(t, time.Now().Add(time.Hour)),
		}))

		snap := mgr.Start(ctx)
		assert.Equal(t, StatusAuthenticated, snap.Status)
		assert.Equal(t, "u1", snap.User.ID)
		assert.Equal(t, 1, client.meCalls)

		_, ok := tokens.Token()
		assert.True(t, ok)
	})

	t.Run("credential rejected upstream resets to anonymous", func(t *testing.T) {
		client := &fakeAuthAPI{meErr: fmt.Errorf("auth.me: %w", sentinel.ErrUnauthorized)}
		mgr, creds, tokens := newManager(client)
		require.NoError(t, creds.Save(ctx, "device-1", credentials.Credential{
			Token: signedToken(t, time.Now().Add(time.Hour)),
		}))

		snap := mgr.Start(ctx)
		assert.Equal(t, StatusAnonymous, snap.Status)

		_, ok := tokens.Token()
		assert.False(t, ok)
		_, err := creds.Load(ctx, "device-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists the credential and publishes", func(t *testing.T) {
		client := &fakeAuthAPI{signInRes: api.AuthResult{
			AccessToken: "tok-1",
			User:        api.User{ID: "u1", Email: "ada@example.com"},
		}}
		mgr, creds, tokens := newManager(client)

		var seen []Session
		mgr.Subscribe(func(s Session) { seen = append(seen, s) })

		snap, err := mgr.SignIn(ctx, "ada@example.com", "pw")
		require.NoError(t, err)
		assert.True(t, snap.Authenticated())
		assert.Equal(t, "u1", snap.User.ID)

		token, ok := tokens.Token()
		require.True(t, ok)
		assert.Equal(t, "tok-1", token)

		cred, err := creds.Load(ctx, "device-1")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", cred.Token)

		require.Len(t, seen, 1)
		assert.Equal(t, StatusAuthenticated, seen[0].Status)
	})

	t.Run("invalid credentials surface as auth required", func(t *testing.T) {
		client := &fakeAuthAPI{signInErr: fmt.Errorf("auth.sign_in: %w", sentinel.ErrUnauthorized)}
		mgr, _, _ := newManager(client)
		mgr.Start(ctx)

		_, err := mgr.SignIn(ctx, "ada@example.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeAuthRequired, dErrors.CodeOf(err))
		assert.Equal(t, StatusAnonymous, mgr.Current().Status)
	})

	t.Run("network failure surfaces as remote failure", func(t *testing.T) {
		client := &fakeAuthAPI{signInErr: errors.New("connection refused")}
		mgr, _, _ := newManager(client)

		_, err := mgr.SignIn(ctx, "ada@example.com", "pw")
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeRemoteFailure, dErrors.CodeOf(err))
	})
}

func TestSignUp(t *testing.T) {
	client := &fakeAuthAPI{signUpRes: api.AuthResult{
		AccessToken: "tok-2",
		User:        api.User{ID: "u2"},
	}}
	mgr, _, tokens := newManager(client)

	snap, err := mgr.SignUp(context.Background(), "new@example.com", "pw", "New User")
	require.NoError(t, err)
	assert.True(t, snap.Authenticated())

	token, ok := tokens.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-2", token)
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("collapses to anonymous even when the remote call fails", func(t *testing.T) {
		client := &fakeAuthAPI{
			signInRes:  api.AuthResult{AccessToken: "tok-1", User: api.User{ID: "u1"}},
			signOutErr: errors.New("upstream down"),
		}
		mgr, creds, tokens := newManager(client)
		_, err := mgr.SignIn(ctx, "ada@example.com", "pw")
		require.NoError(t, err)

		snap := mgr.SignOut(ctx)
		assert.Equal(t, StatusAnonymous, snap.Status)

		_, ok := tokens.Token()
		assert.False(t, ok)
		_, err = creds.Load(ctx, "device-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestEpochRotatesOnEveryTransition(t *testing.T) {
	ctx := context.Background()
	client := &fakeAuthAPI{signInRes: api.AuthResult{AccessToken: "tok-1", User: api.User{ID: "u1"}}}
	mgr, _, _ := newManager(client)

	initial := mgr.Current().Epoch
	mgr.Start(ctx)
	afterStart := mgr.Current().Epoch
	assert.NotEqual(t, initial, afterStart)

	_, err := mgr.SignIn(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	afterSignIn := mgr.Current().Epoch
	assert.NotEqual(t, afterStart, afterSignIn)

	mgr.SignOut(ctx)
	assert.NotEqual(t, afterSignIn, mgr.Current().Epoch)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	client := &fakeAuthAPI{}
	mgr, _, _ := newManager(client)

	calls := 0
	unsubscribe := mgr.Subscribe(func(Session) { calls++ })

	mgr.Start(ctx)
	assert.Equal(t, 1, calls)

	unsubscribe()
	mgr.SignOut(ctx)
	assert.Equal(t, 1, calls, "unsubscribed handlers must not fire")
}
