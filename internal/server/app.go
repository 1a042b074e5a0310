// Package server initializes and runs the bookmarks server. It opens the
// database, wires services into the HTTP API, starts the gRPC health
// endpoint and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/bookmarks/internal/cryptox"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/auth"
	"github.com/dmitrijs2005/bookmarks/internal/server/config"
	"github.com/dmitrijs2005/bookmarks/internal/server/httpapi"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookmarks/internal/server/services"
	"github.com/dmitrijs2005/bookmarks/internal/telemetry"

	gs "github.com/dmitrijs2005/bookmarks/internal/server/grpc"
)

const serviceName = "bookmarks"

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	router       *httpapi.Router
	otelShutdown func(context.Context) error
}

// NewApp connects to the database (running migrations) and builds every
// service. The caller must Run or Close the returned App.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	otelShutdown, err := telemetry.Setup(ctx, serviceName, c.OtelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN, repomanager.WithLogger(logger))
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("db init error: %w", err)
	}

	issuer, err := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		_ = db.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	limiter := newLimiter(ctx, c, logger)

	deps := httpapi.Deps{
		Logger:         logger,
		Users:          services.NewUserService(db, rm, cryptox.NewHasher(cryptox.DefaultParams, c.HasherConcurrency), issuer, logger),
		Bookmarks:      services.NewBookmarkService(db, rm, logger),
		Limiter:        limiter,
		DBHealth:       db.PingContext,
		AuthRateLimit:  c.AuthRateLimit,
		AuthRateWindow: c.AuthRateWindow,
	}
	if c.ExportEnabled() {
		deps.Exports = services.NewExportService(db, rm, c, logger)
	}

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		router:       httpapi.NewRouter(deps),
		otelShutdown: otelShutdown,
	}, nil
}

// newLimiter prefers Redis so limits hold across instances, and falls back
// to process memory when Redis is not configured or unreachable.
func newLimiter(ctx context.Context, c *config.Config, logger logging.Logger) httpapi.RateLimiter {
	if c.AuthRateLimit <= 0 {
		return nil
	}
	if c.RateLimitRedisAddr != "" {
		rl, err := httpapi.NewRedisRateLimiter(ctx, c.RateLimitRedisAddr, c.RateLimitRedisPassword, c.RateLimitRedisDB, logger)
		if err == nil {
			return rl
		}
		logger.Warn(ctx, "redis rate limiter unavailable, using in-memory limiter", "error", err)
	}
	return httpapi.NewMemoryRateLimiter()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.router.Handler(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is canceled, a signal arrives or a server fails, then
// releases every resource.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.logger.Info(context.WithoutCancel(ctx), "Stopping app...")
	return app.Close(context.WithoutCancel(ctx))
}

// Close releases the rate limiter, the database and the tracer provider.
func (app *App) Close(ctx context.Context) error {
	return errors.Join(
		app.router.Close(),
		app.db.Close(),
		app.otelShutdown(ctx),
	)
}
