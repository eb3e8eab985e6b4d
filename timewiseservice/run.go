// Package timewiseservice wires the TimeWise HTTP service together and runs it.
package timewiseservice

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/timewise/timewise/internal/api"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/config"
	"github.com/timewise/timewise/internal/factory"
	"github.com/timewise/timewise/internal/health"
	"github.com/timewise/timewise/internal/logger"
	"github.com/timewise/timewise/internal/lookup"
	"github.com/timewise/timewise/internal/services"
	"github.com/timewise/timewise/internal/store"
	"github.com/timewise/timewise/internal/suggest"
	"github.com/timewise/timewise/internal/timeline"
)

const sessionPurgeInterval = time.Hour

// Run starts the TimeWise HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("timewise-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if !logger.SetLevel(cfg.LogLevel) {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level; keeping default")
	}
	zlog.Logger = log

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("suggest_provider", cfg.SuggestProvider).
		Str("suggest_model", cfg.SuggestModel).
		Bool("dev_mode", cfg.IsDevMode()).
		Msg("TimeWise service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	deps, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close(log)

	healthHandler := api.NewHealthHandler()
	router := buildRouter(cfg, deps, healthHandler)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, deps, healthHandler)

	// Block startup until required dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	go purgeSessions(ctx, deps, cfg.SessionTTL(), log, sessionPurgeInterval)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// dependencies are the long-lived components shared by every request.
type dependencies struct {
	store    store.Store
	provider suggest.Provider
	accounts *services.AccountService
	timeline *services.TimelineService
	catalog  *lookup.Catalog
	auth     auth.Authenticator
}

func (d *dependencies) close(log zerolog.Logger) {
	if c, ok := d.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("closing store failed")
		}
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*dependencies, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, err
	}

	provider := factory.NewSuggestProvider(ctx, cfg, log)
	timeout := time.Duration(cfg.SuggestTimeoutSeconds) * time.Second

	accounts := services.NewAccountService(st, cfg.SessionTTL())
	var authn auth.Authenticator = auth.NewSessionAuthenticator(st.Sessions())
	if cfg.IsDevMode() {
		if err := accounts.EnsureDevUser(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("Failed to provision local development user")
			return nil, err
		}
		authn = auth.NewDevAuthenticator(authn)
		log.Warn().Str("user_id", auth.DevUserID).Msg("dev mode: local development token accepted")
	}

	catalog := lookup.Default()
	registry := timeline.NewRegistry(st.Entries(), log.With().Str("component", "timeline").Logger())
	suggester := suggest.NewService(provider, timeout, log.With().Str("component", "suggest").Logger())

	return &dependencies{
		store:    st,
		provider: provider,
		accounts: accounts,
		timeline: services.NewTimelineService(registry, catalog, suggester, cfg.Location()),
		catalog:  catalog,
		auth:     authn,
	}, nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(_ *config.Config, d *dependencies, healthHandler *api.HealthHandler) *mux.Router {
	return api.NewRouter(api.Deps{
		Accounts: d.accounts,
		Timeline: d.timeline,
		Catalog:  d.catalog,
		Auth:     d.auth,
		Health:   healthHandler,
	})
}

// startHealthCheckers starts component checkers and the service-level aggregator,
// then binds them to the health endpoint. The suggestion checker is reported
// but never gates service health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, d *dependencies, h *api.HealthHandler) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewHealthChecker(d.store, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)

	advisory := suggest.NewHealthChecker(d.provider, log, probeTimeout)
	if advisory != nil {
		go advisory.Start(ctx, interval)
	}

	h.Bind(svcHealth.IsHealthy, func() map[string]bool {
		out := svcHealth.Components()
		if advisory != nil {
			out[advisory.Name()] = advisory.IsHealthy()
		}
		return out
	})
	return svcHealth
}

// purgeSessions deletes expired sessions every interval until ctx ends.
// Cached entry lists idle for longer than a session lifetime go with them.
func purgeSessions(ctx context.Context, d *dependencies, idle time.Duration, log zerolog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepSessions(ctx, d, idle, log)
		}
	}
}

func sweepSessions(ctx context.Context, d *dependencies, idle time.Duration, log zerolog.Logger) {
	if n := d.timeline.EvictIdle(idle); n > 0 {
		log.Debug().Int("users", n).Msg("idle entry caches evicted")
	}
	n, err := d.accounts.PurgeExpired(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("session purge failed")
		return
	}
	if n > 0 {
		log.Info().Int64("sessions", n).Msg("expired sessions purged")
	}
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
