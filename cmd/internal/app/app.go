// Package app wires the Atrium server runtime: config, logging, the
// database pool and migrations, the auth API, and the web client
// handler, plus graceful shutdown around all of it.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"atrium/cmd/identity"
	authapi "atrium/cmd/internal/auth/api"
	"atrium/cmd/internal/auth/session"
	"atrium/cmd/internal/web"
	"atrium/cmd/security/password"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

type poolStore struct {
	pool *pgxpool.Pool
}

func (s poolStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// App is the Atrium server runtime.
type App struct {
	cfg Config
	log Logger

	store     Store
	dbPool    *pgxpool.Pool
	dbEnabled bool

	sessions  *session.Service
	sessStore session.Store
	sessCfg   session.Config
	auth      *authapi.Handler
	spa       http.Handler

	metricsReg *prometheus.Registry
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	st, dbPool, dbEnabled, users, sessStore, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	closeOnErr := func(err error) (*App, error) {
		_ = st.Close(context.Background())
		return nil, err
	}

	hasher, err := password.FromEnv()
	if err != nil {
		return closeOnErr(err)
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return closeOnErr(err)
	}
	sessions, err := session.NewService(sessCfg, users, sessStore, hasher, log)
	if err != nil {
		return closeOnErr(err)
	}

	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auth, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), sessions, authapi.NewMetrics(metricsReg))
	if err != nil {
		return closeOnErr(err)
	}

	spa, err := web.NewHandler(log, web.LoadConfigFromEnv())
	if err != nil {
		return closeOnErr(err)
	}

	return &App{
		cfg:        cfg,
		log:        log,
		store:      st,
		dbPool:     dbPool,
		dbEnabled:  dbEnabled,
		sessions:   sessions,
		sessStore:  sessStore,
		sessCfg:    sessCfg,
		auth:       auth,
		spa:        spa,
		metricsReg: metricsReg,
	}, nil
}

// Sessions returns the session service, mainly for tests.
func (a *App) Sessions() *session.Service {
	if a == nil {
		return nil
	}
	return a.sessions
}

// Run starts the HTTP server and the session reaper and blocks until
// context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.spa, a.metricsReg)

	var handler http.Handler = mux
	handler = WithCORS(handler, a.cfg.CORSOrigin)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go session.NewReaper(a.sessionStore(), a.sessCfg.ReapInterval, a.log).Run(reaperCtx)

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "env", a.cfg.Env, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

// sessionStore exposes the reaper's view of session persistence.
func (a *App) sessionStore() session.Store {
	return a.sessStore
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and the
// in-memory dev stores.
func newStores(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, bool, identity.Store, session.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, nil, false, identity.NewMemoryStore(), session.NewMemoryStore(), nil
	}

	if cfg.MigrateOnStart {
		if err := RunMigrations(ctx, cfg); err != nil {
			return nil, nil, false, nil, nil, err
		}
		log.Info("db.migrations.applied")
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, nil, nil, err
	}

	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, nil, err
	}
	sessStore, err := session.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, nil, err
	}

	log.Info("db.enabled.postgres_store")
	return poolStore{pool: pool}, pool, true, users, sessStore, nil
}
