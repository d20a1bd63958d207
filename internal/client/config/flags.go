package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered through flagx.FilterArgs first so that commands and
// their arguments do not reach the flag set. -insecure only takes a value
// in the -insecure=false form.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-n", "-ca", "-r", "-w", "-db"})
	for _, a := range os.Args[1:] {
		if a == "-insecure" || strings.HasPrefix(a, "-insecure=") {
			args = append(args, a)
		}
	}

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.ServerName, "n", cfg.ServerName, "server name in its TLS certificate")
	fs.StringVar(&cfg.TLSCAFile, "ca", cfg.TLSCAFile, "CA certificate file")
	fs.BoolVar(&cfg.InsecureSkipVerify, "insecure", cfg.InsecureSkipVerify, "skip server certificate verification")
	fs.IntVar(&cfg.ResponseAttempts, "r", cfg.ResponseAttempts, "response poll attempts")
	fs.StringVar(&cfg.SessionDBPath, "db", cfg.SessionDBPath, "local session database file (empty disables)")
	delay := fs.Int("w", int(cfg.ResponseDelay.Milliseconds()), "delay between response polls (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ResponseDelay = time.Duration(*delay) * time.Millisecond
}
