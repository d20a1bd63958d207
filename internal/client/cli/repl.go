package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isRegistered() bool
	Register(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the papertrader CLI.
//
// It reads a line from r, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF, on "exit" or "quit", or
// when ctx is cancelled.
//
//	help           show available commands
//	register       create an account
//	status         show user name and connection state
//	exit | quit    leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures to the user.
// Command prompts read from the same reader, so r must be the App's reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pt %s> ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isRegistered() {
				printlnFn("Available commands: status, exit")
			} else {
				printlnFn("Available commands: register, status, exit")
			}

		case "register":
			if a.isRegistered() {
				printlnFn("Already registered in this session")
				continue
			}
			_ = a.Register(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
