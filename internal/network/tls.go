package network

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// LoadServerTLS builds a server config from a PEM certificate chain and key.
func LoadServerTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" {
		return nil, ErrTLSCertFileRequired
	}
	if keyFile == "" {
		return nil, ErrTLSKeyFileRequired
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load tls key pair: %w", err)
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

// LoadClientTLS builds a client config. caFile is required unless insecure
// is set, in which case the server certificate is not verified.
func LoadClientTLS(caFile, serverName string, insecure bool) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
	}
	if insecure {
		cfg.InsecureSkipVerify = true //nolint:gosec // opt-in for local development
		return cfg, nil
	}
	if caFile == "" {
		return nil, ErrTLSCAFileRequired
	}

	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read ca file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, ErrTLSNoCertificates
	}
	cfg.RootCAs = pool
	return cfg, nil
}
