package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dmitrijs2005/papertrader/internal/flagx"
	"github.com/dmitrijs2005/papertrader/internal/timex"
)

// FileConfig is the on-disk form of Config. Durations use timex.Duration so
// files can say "500ms" or give integer nanoseconds (JSON only).
type FileConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr" toml:"endpoint_addr"`
	DatabaseDSN                  *string        `json:"database_dsn" toml:"database_dsn"`
	TLSCertFile                  string         `json:"tls_cert_file" toml:"tls_cert_file"`
	TLSKeyFile                   string         `json:"tls_key_file" toml:"tls_key_file"`
	SecretKey                    string         `json:"secret_key" toml:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration" toml:"session_token_validity_duration"`
	ReadPollInterval             timex.Duration `json:"read_poll_interval" toml:"read_poll_interval"`
}

// parseFile overlays config with the file named by -c / -config. Files
// ending in .toml are decoded as TOML, anything else as JSON. Keys absent
// from the file keep their current value. Read or decode errors panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, c)
	} else {
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.TLSCertFile != "" {
		config.TLSCertFile = c.TLSCertFile
	}
	if c.TLSKeyFile != "" {
		config.TLSKeyFile = c.TLSKeyFile
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTokenValidityDuration.Duration > 0 {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.ReadPollInterval.Duration > 0 {
		config.ReadPollInterval = c.ReadPollInterval.Duration
	}
}
