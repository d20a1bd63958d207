package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/client/account"
	"github.com/dmitrijs2005/papertrader/internal/client/config"
	"github.com/dmitrijs2005/papertrader/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/papertrader/internal/client/storage"
	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/hashchain"
	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/network"
)

// accountCreator is the part of account.Provisioner the CLI uses.
type accountCreator interface {
	CreateAccount(ctx context.Context, username string, email, password []byte) (account.Session, error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	policy   hashchain.Policy
	accounts accountCreator
	conn     *network.ClientConn
	db       *sql.DB
	sessions sessions.Repository
	saved    *sessions.Session
	userName string
	token    string
	reader   *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) *App {
	return &App{
		config: c,
		logger: logger,
		policy: hashchain.DefaultPolicy(),
		reader: bufio.NewReader(os.Stdin),
	}
}

// Run opens the local session store, starts the REPL and releases the
// connection and the store when it returns.
func (a *App) Run(ctx context.Context) {
	a.openSessions(ctx)
	defer a.closeSessions()
	defer a.disconnect()
	a.Root(ctx)
}

// openSessions loads the session saved for the configured server. The CLI
// works without a store; failures are only logged.
func (a *App) openSessions(ctx context.Context) {
	if a.config.SessionDBPath == "" {
		return
	}
	db, repos, err := storage.InitDatabase(ctx, a.config.SessionDBPath)
	if err != nil {
		a.logger.Warn(ctx, "session store unavailable", "path", a.config.SessionDBPath, "error", err)
		return
	}
	a.db = db
	a.sessions = repos.Sessions

	s, err := a.sessions.Get(ctx, a.config.ServerEndpointAddr)
	switch {
	case errors.Is(err, common.ErrorNotFound):
	case err != nil:
		a.logger.Warn(ctx, "load session", "error", err)
	default:
		a.saved = s
	}
}

func (a *App) closeSessions() {
	if a.db != nil {
		_ = a.db.Close()
	}
	a.db = nil
	a.sessions = nil
}

// saveSession remembers the token issued for userName, replacing any
// earlier one for the same server.
func (a *App) saveSession(ctx context.Context, userName, token string) {
	if a.sessions == nil {
		return
	}
	s := &sessions.Session{
		Server:    a.config.ServerEndpointAddr,
		Username:  userName,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.sessions.Save(ctx, s); err != nil {
		a.logger.Warn(ctx, "save session", "error", err)
		return
	}
	a.saved = s
}

func (a *App) isRegistered() bool {
	return a.token != ""
}

// connect returns the account provisioner, dialing the server first if
// there is no live connection.
func (a *App) connect(ctx context.Context) (accountCreator, error) {
	if a.accounts != nil {
		return a.accounts, nil
	}

	tlsCfg, err := network.LoadClientTLS(a.config.TLSCAFile, a.config.ServerName, a.config.InsecureSkipVerify)
	if err != nil {
		return nil, err
	}

	conn, err := network.Dial(ctx, a.config.ServerEndpointAddr, tlsCfg, a.logger, network.DefaultOptions())
	if err != nil {
		return nil, err
	}
	a.logger.Debug(ctx, "connected", "addr", a.config.ServerEndpointAddr)

	budget := network.Budget{Attempts: a.config.ResponseAttempts, Delay: a.config.ResponseDelay}
	a.conn = conn
	a.accounts = account.NewProvisioner(conn, a.policy, budget, a.logger)
	return a.accounts, nil
}

// disconnect closes the connection, if any, and waits for it to be released.
// The next command that needs the server dials again.
func (a *App) disconnect() {
	if a.conn != nil {
		a.conn.Close()
		<-a.conn.Done()
	}
	a.conn = nil
	a.accounts = nil
}

func (a *App) connState() string {
	if a.conn == nil {
		return "offline"
	}
	return a.conn.State().String()
}
