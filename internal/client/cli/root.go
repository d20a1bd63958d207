package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.config != nil {
		s += a.connState()
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Status prints the registered user name, the connection state and the
// saved session, if any.
func (a *App) Status(_ context.Context) error {
	user := a.userName
	if user == "" {
		user = "not registered"
	}
	printlnFn("User:", user)
	printlnFn("Server:", a.config.ServerEndpointAddr, a.connState())
	if a.saved != nil {
		printlnFn("Saved session:", a.saved.Username, "since", a.saved.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// Root prints the banner and runs the REPL on stdin until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to papertrader CLI (type 'help' for commands)")
	if a.saved != nil {
		printlnFn("Saved session for", a.saved.Username)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
