package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/favorites"
	"storefront/internal/platform/config"
	"storefront/internal/platform/httpserver"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	platformredis "storefront/internal/platform/redis"
	"storefront/internal/prefs"
	"storefront/internal/session"
	"storefront/internal/session/credentials"
	httptransport "storefront/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	rdb, err := platformredis.New(cfg.Redis())
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var credStore credentials.Store = credentials.NewMemoryStore()
	var prefStore prefs.Store = prefs.NewMemoryStore()
	if rdb != nil {
		prefStore = prefs.NewRedisStore(rdb.Client)
		if cfg.CredentialKey != "" {
			redisCreds, err := credentials.NewRedisStore(rdb.Client, cfg.CredentialKey)
			if err != nil {
				return err
			}
			credStore = redisCreds
		} else {
			log.Warn("redis configured without STOREFRONT_CREDENTIAL_KEY, credentials stay in memory")
		}
	}

	tokens := session.NewTokenCache()
	client := api.New(cfg.APIBaseURL,
		api.WithTokenSource(tokens),
		api.WithMetrics(m),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)

	sessions := session.NewManager(client, credStore, tokens, cfg.DeviceID, log)
	cartStore := cart.New(client, sessions, log, cart.WithMetrics(m))
	favoriteStore := favorites.New(client, sessions, log, favorites.WithMetrics(m))

	// On every session transition, reconcile both stores from the remote
	// source of truth. Refreshes run concurrently; each store discards its
	// own result if the session moves on mid-flight.
	refreshStores := func(s session.Session) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()

		var g errgroup.Group
		g.Go(func() error { return cartStore.Refresh(ctx) })
		g.Go(func() error { return favoriteStore.Refresh(ctx) })
		if err := g.Wait(); err != nil {
			log.WarnContext(ctx, "store refresh after session transition failed",
				"status", string(s.Status), "error", err)
		}
	}
	unsubscribe := sessions.Subscribe(refreshStores)
	defer unsubscribe()

	startCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	snap := sessions.Start(startCtx)
	cancel()
	log.Info("session resolved", "status", string(snap.Status))

	handler := httptransport.New(log, m, sessions, cartStore, favoriteStore, prefStore, client, cfg.DeviceID)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront gateway listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
