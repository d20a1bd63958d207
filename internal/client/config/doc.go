// Package config loads runtime configuration for the papertrader CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or TOML file selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the server
//	-n string     server name expected in its certificate
//	-ca string    CA certificate file
//	-insecure     skip server certificate verification
//	-r int        response poll attempts
//	-w int        delay between response polls (milliseconds)
//	-db string    local session database file, empty disables it
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "500ms" or, in
// JSON, integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "localhost:4000",
//	  "server_name": "localhost",
//	  "tls_ca_file": "certs/ca.crt",
//	  "response_attempts": 15,
//	  "response_delay": "500ms",
//	  "session_db_path": "papertrader.db"
//	}
//
// The same keys are used in TOML files.
package config
