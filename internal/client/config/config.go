package config

import "time"

// Config holds runtime settings for the papertrader CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the server's TLS endpoint.
//   - ServerName: name expected in the server certificate (SNI).
//   - TLSCAFile: PEM bundle of the CA that signed the server certificate.
//   - InsecureSkipVerify: skip certificate verification (local development only).
//   - ResponseAttempts / ResponseDelay: bounded wait applied to every server reply.
//   - SessionDBPath: SQLite file remembering issued session tokens. Empty disables it.
type Config struct {
	ServerEndpointAddr string
	ServerName         string
	TLSCAFile          string
	InsecureSkipVerify bool
	ResponseAttempts   int
	ResponseDelay      time.Duration
	SessionDBPath      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "localhost:4000"
	c.ServerName = "localhost"
	c.TLSCAFile = "certs/ca.crt"
	c.InsecureSkipVerify = false
	c.ResponseAttempts = 15
	c.ResponseDelay = 500 * time.Millisecond
	c.SessionDBPath = "papertrader.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
