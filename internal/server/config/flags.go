package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   TLS bind address (e.g., ":4000")
//	-d string   PostgreSQL DSN, empty for the in-memory store
//	-s string   session token HMAC secret key
//	-t int      session token validity, minutes
//	-x string   TLS certificate file
//	-k string   TLS private key file
//	-i int      read poll interval, milliseconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-x", "-k", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.TLSCertFile, "x", config.TLSCertFile, "TLS certificate file")
	fs.StringVar(&config.TLSKeyFile, "k", config.TLSKeyFile, "TLS key file")

	tokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	readPoll := fs.Int("i", int(config.ReadPollInterval.Milliseconds()), "read poll interval (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.ReadPollInterval = time.Duration(*readPoll) * time.Millisecond
}
