// Package app wires the vidcore server runtime: config, logging, storage,
// migrations, metrics, and HTTP routes.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vidcore/cmd/identity"
	authapi "vidcore/cmd/internal/auth/api"
	"vidcore/cmd/internal/auth/session"
	"vidcore/cmd/internal/media"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the vidcore server runtime.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	accounts identity.Store
	sessions *session.Service
	uploads  media.Uploader

	auth    *authapi.Handler
	metrics *Metrics
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, metrics: NewMetrics()}

	if err := a.initStore(context.Background()); err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	tokens, err := session.NewHS256Manager(sessCfg)
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewService(sessCfg, a.accounts, tokens)

	a.initUploader(context.Background())

	authCfg := authapi.LoadConfigFromEnv()
	a.auth = authapi.NewHandler(log, authCfg, a.accounts, a.sessions, a.uploads, authapi.NewMetrics(a.metrics.Registry))

	return a, nil
}

// initStore decides between Postgres-backed persistence and the in-memory
// dev store, and applies migrations when configured.
func (a *App) initStore(ctx context.Context) error {
	if a.cfg.DatabaseURL == "" {
		a.log.Info("db.disabled.inmemory_store")
		a.accounts = identity.NewMemoryStore()
		return nil
	}

	if a.cfg.MigrateOnStart {
		if err := RunMigrations(ctx, a.cfg, a.log); err != nil {
			return err
		}
	}

	pool, err := NewDBPool(ctx, a.cfg)
	if err != nil {
		return err
	}

	store, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return err
	}

	a.log.Info("db.enabled.postgres_store")
	a.dbPool = pool
	a.dbEnabled = true
	a.accounts = store
	return nil
}

// initUploader picks S3 when configured, the in-memory uploader otherwise.
func (a *App) initUploader(ctx context.Context) {
	mediaCfg, err := media.LoadConfigFromEnv()
	if err != nil {
		a.log.Info("media.disabled.inmemory_uploader")
		a.uploads = media.NewMemoryUploader()
		return
	}

	up, err := media.NewS3Uploader(ctx, mediaCfg)
	if err != nil {
		a.log.Error("media.s3.init.fail", "err", err)
		a.uploads = media.NewMemoryUploader()
		return
	}

	a.log.Info("media.enabled.s3", "bucket", mediaCfg.Bucket)
	a.uploads = up
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.metrics)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(WithSecurityHeaders(WithMetrics(mux, a.metrics)), a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

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

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
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
