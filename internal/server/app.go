// Package server initializes and runs the papertrader server: storage,
// request routing, the TLS endpoint and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/papertrader/internal/hashchain"
	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/network"
	"github.com/dmitrijs2005/papertrader/internal/server/accounts"
	"github.com/dmitrijs2005/papertrader/internal/server/auth"
	"github.com/dmitrijs2005/papertrader/internal/server/config"
	repo "github.com/dmitrijs2005/papertrader/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/papertrader/internal/server/repositories/repomanager"
)

// newRepositoryManager is a seam for tests.
var newRepositoryManager = repomanager.NewPostgresRepositoryManager

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *network.Server
}

// NewApp opens storage and builds the TLS endpoint. With an empty
// DatabaseDSN accounts are kept in memory; otherwise the database is
// migrated before the endpoint is created.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger, policy hashchain.Policy) (*App, error) {
	app := &App{config: c, logger: logger}

	store, err := app.initStore(ctx)
	if err != nil {
		return nil, err
	}

	tlsCfg, err := network.LoadServerTLS(c.TLSCertFile, c.TLSKeyFile)
	if err != nil {
		app.closeDB(ctx)
		return nil, fmt.Errorf("tls init error: %w", err)
	}

	d := network.NewDispatcher(logger)
	svc := accounts.NewService(store, policy, logger)
	tokens := auth.NewIssuer([]byte(c.SecretKey), c.SessionTokenValidityDuration)
	accounts.NewHandler(svc, tokens, logger).RegisterRoutes(d)

	opts := network.DefaultOptions()
	opts.ReadPollInterval = c.ReadPollInterval
	app.server = network.NewServer(c.EndpointAddr, tlsCfg, d, logger, opts)

	return app, nil
}

func (app *App) initStore(ctx context.Context) (accounts.Store, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, accounts are kept in memory")
		return repo.NewInMemoryRepository(), nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := newRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	app.db = db
	return accounts.NewSQLStore(db, m), nil
}

func (app *App) closeDB(ctx context.Context) {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
}

// Ready is closed once the endpoint is accepting connections.
func (app *App) Ready() <-chan struct{} { return app.server.Ready() }

// Addr is the bound endpoint address, valid after Ready.
func (app *App) Addr() net.Addr { return app.server.Addr() }

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases storage.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.closeDB(context.WithoutCancel(ctx))

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	app.logger.Info(ctx, "Server stopped")
	return nil
}
