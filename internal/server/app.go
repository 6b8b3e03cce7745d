// Package server wires the Lentik server together: storage, credential
// strategy, the realtime hub, services, the REST/WebSocket API and the gRPC
// health endpoint. It owns startup and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/auth"
	"github.com/dmitrijs2005/lentik/internal/server/config"
	"github.com/dmitrijs2005/lentik/internal/server/httpapi"
	"github.com/dmitrijs2005/lentik/internal/server/realtime"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lentik/internal/server/services"

	gs "github.com/dmitrijs2005/lentik/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	hub     *realtime.Hub
	handler http.Handler
	health  *gs.GRPCServer
}

// NewApp opens the database, applies migrations and assembles the server.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app, err := assemble(c, db, rm, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// newCredentials selects the configured credential strategy.
func newCredentials(c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (auth.CredentialVerifier, error) {
	switch c.AuthStrategy {
	case config.StrategyToken:
		return auth.NewTokenStrategy([]byte(c.SecretKey), c.CredentialTTL), nil
	case config.StrategySession:
		return auth.NewSessionStrategy(rm.Sessions(db), c.CredentialTTL, logger), nil
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", c.AuthStrategy)
	}
}

// assemble builds one hub and hands it to every service and to the
// WebSocket handler, so events published by services reach connected sockets.
func assemble(c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	credentials, err := newCredentials(c, db, rm, logger)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(logger)

	users := services.NewUserService(db, rm, credentials, hub, c, logger)
	families := services.NewFamilyService(db, rm, hub, c, logger)
	chats := services.NewChatService(db, rm, hub, logger)
	calendar := services.NewCalendarService(db, rm, hub, logger)
	gallery := services.NewGalleryService(db, rm, hub, c, logger)
	channels := services.NewChannelService(db, rm, logger)

	ws := realtime.NewHandler(hub, users, families, chats, realtime.HandlerConfig{
		CookieName:     c.CookieName,
		AllowedOrigins: c.AllowedOrigins,
		MaxFrameSize:   c.MaxFrameSize,
	}, logger)

	api := httpapi.New(users, families, chats, calendar, gallery, channels, ws, httpapi.CookieConfig{
		Name:   c.CookieName,
		Secure: c.SecureCookie,
		MaxAge: c.CredentialTTL,
	}, logger)

	app := &App{
		config:  c,
		logger:  logger,
		db:      db,
		hub:     hub,
		handler: api.Routes(),
	}
	if c.EndpointAddrGRPC != "" {
		app.health = gs.NewGRPCServer(c.EndpointAddrGRPC, db, 0, logger)
	}
	return app, nil
}

// Handler returns the REST and WebSocket handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then shuts down:
// health goes NOT_SERVING, HTTP stops accepting requests and the hub closes
// every open socket.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	ln, err := net.Listen("tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		return fmt.Errorf("http listen error: %w", err)
	}
	return app.serve(ctx, ln)
}

func (app *App) serve(ctx context.Context, ln net.Listener) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "address", ln.Addr().String(), "auth_strategy", app.config.AuthStrategy)

	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		if runErr != nil {
			app.logger.Error(ctx, "http server failed", "error", runErr)
		}
	}

	app.logger.Info(ctx, "Shutting down...")
	if app.health != nil {
		app.health.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Warn(ctx, "http shutdown incomplete", "error", err)
	}

	// hijacked WebSocket connections are not tracked by http.Server
	app.hub.Close()

	cancelFunc()
	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	return runErr
}
