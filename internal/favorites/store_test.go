package favorites

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"storefront/internal/favorites/mocks"
	"storefront/internal/session"
	dErrors "storefront/pkg/domain-errors"
)

type fakeSessions struct {
	mu sync.Mutex
	s  session.Session
}

func (f *fakeSessions) Current() session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSessions) set(s session.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.s = s
}

func authenticated() session.Session {
	return session.Session{Status: session.StatusAuthenticated, Epoch: uuid.New()}
}

func anonymous() session.Session {
	return session.Session{Status: session.StatusAnonymous, Epoch: uuid.New()}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddRequiresSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRemoteClient(ctrl)
	sessions := &fakeSessions{s: anonymous()}
	store := New(client, sessions, testLogger())

	// No EXPECT on the mock: an anonymous add must not touch the network.
	err := store.Add(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeAuthRequired, dErrors.CodeOf(err))
	assert.False(t, store.IsFavorite("p1"))
}

func TestAddConfirmsRemotelyBeforeLocalInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("success inserts locally", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockRemoteClient(ctrl)
		sessions := &fakeSessions{s: authenticated()}
		store := New(client, sessions, testLogger())

		client.EXPECT().AddFavorite(gomock.Any(), "p1").Return(nil)

		require.NoError(t, store.Add(ctx, "p1"))
		assert.True(t, store.IsFavorite("p1"))
	})

	t.Run("failure leaves the set untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockRemoteClient(ctrl)
		sessions := &fakeSessions{s: authenticated()}
		store := New(client, sessions, testLogger())

		client.EXPECT().AddFavorite(gomock.Any(), "p1").Return(errors.New("boom"))

		err := store.Add(ctx, "p1")
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeRemoteFailure, dErrors.CodeOf(err))
		// No optimistic guess survives a failed remote call.
		assert.False(t, store.IsFavorite("p1"))
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*Store, *mocks.MockRemoteClient) {
		t.Helper()
		ctrl := gomock.NewController(t)
		client := mocks.NewMockRemoteClient(ctrl)
		sessions := &fakeSessions{s: authenticated()}
		store := New(client, sessions, testLogger())
		client.EXPECT().AddFavorite(gomock.Any(), "p1").Return(nil)
		require.NoError(t, store.Add(ctx, "p1"))
		return store, client
	}

	t.Run("success removes locally", func(t *testing.T) {
		store, client := seed(t)
		client.EXPECT().RemoveFavorite(gomock.Any(), "p1").Return(nil)

		require.NoError(t, store.Remove(ctx, "p1"))
		assert.False(t, store.IsFavorite("p1"))
	})

	t.Run("failure keeps membership", func(t *testing.T) {
		store, client := seed(t)
		client.EXPECT().RemoveFavorite(gomock.Any(), "p1").Return(errors.New("boom"))

		require.Error(t, store.Remove(ctx, "p1"))
		assert.True(t, store.IsFavorite("p1"))
	})
}

func TestToggleDispatchesOnMembership(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRemoteClient(ctrl)
	sessions := &fakeSessions{s: authenticated()}
	store := New(client, sessions, testLogger())

	gomock.InOrder(
		client.EXPECT().AddFavorite(gomock.Any(), "p1").Return(nil),
		client.EXPECT().RemoveFavorite(gomock.Any(), "p1").Return(nil),
	)

	require.NoError(t, store.Toggle(ctx, "p1"))
	assert.True(t, store.IsFavorite("p1"))

	require.NoError(t, store.Toggle(ctx, "p1"))
	assert.False(t, store.IsFavorite("p1"))
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous collapses to empty without a network call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockRemoteClient(ctrl)
		sessions := &fakeSessions{s: authenticated()}
		store := New(client, sessions, testLogger())

		client.EXPECT().AddFavorite(gomock.Any(), "p1").Return(nil)
		require.NoError(t, store.Add(ctx, "p1"))

		sessions.set(anonymous())
		require.NoError(t, store.Refresh(ctx))
		assert.Empty(t, store.IDs())
	})

	t.Run("resolving leaves state alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockRemoteClient(ctrl)
		sessions := &fakeSessions{s: authenticated()}
		store := New(client, sessions, testLogger())

		client.EXPECT().AddFavorite(gomock.Any(), "p1").Return(nil)
		require.NoError(t, store.Add(ctx, "p1"))

		sessions.set(session.Session{Status: session.StatusResolving, Epoch: uuid.New()})
		require.NoError(t, store.Refresh(ctx))
		assert.True(t, store.IsFavorite("p1"))
	})

	t.Run("replaces local state wholesale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockRemoteClient(ctrl)
		sessions := &fakeSessions{s: authenticated()}
		store := New(client, sessions, testLogger())

		client.EXPECT().AddFavorite(gomock.Any(), "stale").Return(nil)
		require.NoError(t, store.Add(ctx, "stale"))

		client.EXPECT().FavoriteIDs(gomock.Any()).Return([]string{"p2", "p3"}, nil)
		require.NoError(t, store.Refresh(ctx))

		// The last server fetch wins over stale local state.
		assert.Equal(t, []string{"p2", "p3"}, store.IDs())
		assert.False(t, store.IsFavorite("stale"))
	})

	t.Run("remote failure keeps last-known-good state", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockRemoteClient(ctrl)
		sessions := &fakeSessions{s: authenticated()}
		store := New(client, sessions, testLogger())

		client.EXPECT().FavoriteIDs(gomock.Any()).Return([]string{"p1"}, nil)
		require.NoError(t, store.Refresh(ctx))

		client.EXPECT().FavoriteIDs(gomock.Any()).Return(nil, errors.New("boom"))
		err := store.Refresh(ctx)
		require.Error(t, err)
		assert.Equal(t, []string{"p1"}, store.IDs())
	})
}

func TestStaleRefreshIsDiscardedAfterSignOut(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRemoteClient(ctrl)
	sessions := &fakeSessions{s: authenticated()}
	store := New(client, sessions, testLogger())

	// The user signs out while the refresh is in flight: the session epoch
	// rotates before the remote call returns its (now stale) payload.
	client.EXPECT().FavoriteIDs(gomock.Any()).DoAndReturn(func(context.Context) ([]string, error) {
		sessions.set(anonymous())
		return []string{"p1", "p2"}, nil
	})

	require.NoError(t, store.Refresh(ctx))
	assert.Empty(t, store.IDs(), "stale refresh must not repopulate the store after sign-out")

	// The sign-out refresh then settles the store at empty.
	require.NoError(t, store.Refresh(ctx))
	assert.Empty(t, store.IDs())
}
