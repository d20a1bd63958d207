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

// FileConfig is a DTO used exclusively for decoding config files. After
// parsing, present values are copied into the runtime Config.
type FileConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr" toml:"server_endpoint_addr"`
	ServerName         string         `json:"server_name" toml:"server_name"`
	TLSCAFile          string         `json:"tls_ca_file" toml:"tls_ca_file"`
	InsecureSkipVerify *bool          `json:"insecure_skip_verify" toml:"insecure_skip_verify"`
	ResponseAttempts   int            `json:"response_attempts" toml:"response_attempts"`
	ResponseDelay      timex.Duration `json:"response_delay" toml:"response_delay"`
	SessionDBPath      *string        `json:"session_db_path" toml:"session_db_path"`
}

// parseFile overlays cfg with the file selected by -c / -config. A .toml
// extension selects TOML, anything else is read as JSON. Read or decode
// errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	if fc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = fc.ServerEndpointAddr
	}
	if fc.ServerName != "" {
		cfg.ServerName = fc.ServerName
	}
	if fc.TLSCAFile != "" {
		cfg.TLSCAFile = fc.TLSCAFile
	}
	if fc.InsecureSkipVerify != nil {
		cfg.InsecureSkipVerify = *fc.InsecureSkipVerify
	}
	if fc.ResponseAttempts > 0 {
		cfg.ResponseAttempts = fc.ResponseAttempts
	}
	if fc.ResponseDelay.Duration > 0 {
		cfg.ResponseDelay = fc.ResponseDelay.Duration
	}
	if fc.SessionDBPath != nil {
		cfg.SessionDBPath = *fc.SessionDBPath
	}
}
