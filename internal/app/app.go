// Package app wires the frontend together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/brandhub/internal/backend"
	"github.com/utafrali/brandhub/internal/config"
	handler "github.com/utafrali/brandhub/internal/handler/http"
	"github.com/utafrali/brandhub/internal/session"
	"github.com/utafrali/brandhub/internal/view"
	apperrors "github.com/utafrali/brandhub/pkg/errors"
	"github.com/utafrali/brandhub/pkg/health"
	"github.com/utafrali/brandhub/pkg/tracing"
)

const serviceName = "web"

// App wires together all dependencies and runs the web frontend.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Session store. Redis keeps logins across restarts and replicas; the
	// in-memory store serves development.
	var (
		rdb      *redis.Client
		sessions session.Store
	)
	if cfg.SessionBackend == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr()),
			slog.Int("db", cfg.RedisDB),
		)
		sessions = session.NewRedisStore(rdb, cfg.SessionTTLDuration())
	} else {
		logger.Warn("using in-memory session store; sessions are lost on restart")
		sessions = session.NewMemoryStore(cfg.SessionTTLDuration())
	}

	// Backend API client.
	backendCfg := backend.DefaultConfig(cfg.BackendURL)
	backendCfg.Timeout = cfg.BackendTimeout()
	backendClient := backend.New(backendCfg, logger)
	logger.Info("backend client initialized", slog.String("base_url", cfg.BackendURL))

	// Views.
	views, err := view.New(cfg.LogoAllowedHosts, logger)
	if err != nil {
		return nil, fmt.Errorf("init views: %w", err)
	}

	// Health checks. Redis is critical when it holds the sessions; the
	// backend is non-critical so a backend outage degrades pages without
	// taking this service out of rotation.
	healthHandler := health.NewHandler()
	if rdb != nil {
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	// An unauthenticated probe answered with 401 still proves the backend
	// is reachable.
	healthHandler.RegisterNonCritical("backend", func(ctx context.Context) error {
		_, err := backendClient.ListBrands(ctx, "")
		if err == nil || errors.Is(err, apperrors.ErrUnauthorized) {
			return nil
		}
		return err
	})

	// HTTP router.
	h := handler.NewHandler(backendClient, sessions, views, handler.CookieConfig{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
		MaxAge: cfg.SessionTTLDuration(),
	}, logger)

	router := handler.NewRouter(h, healthHandler, handler.RouterConfig{
		ServiceName:         serviceName,
		LoginRateRPS:        cfg.LoginRateRPS,
		LoginRateBurst:      cfg.LoginRateBurst,
		MetricsAllowedCIDRs: cfg.MetricsAllowedCIDRs,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
