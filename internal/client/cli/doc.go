// Package cli provides the interactive papertrader command-line client.
//
// It wires configuration, the TLS connection to the server and an
// interactive REPL. The connection is opened lazily on the first command
// that needs the server and reused afterwards.
//
// Commands:
//   - register: create an account (user name, email, password)
//   - status: show the user name and connection state
//   - exit / quit
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
