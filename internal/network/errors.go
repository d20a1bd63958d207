package network

import "errors"

var (
	ErrConnClosed      = errors.New("network: connection closed")
	ErrResponseTimeout = errors.New("network: response timeout")

	ErrTLSCertFileRequired = errors.New("network: tls cert file required")
	ErrTLSKeyFileRequired  = errors.New("network: tls key file required")
	ErrTLSCAFileRequired   = errors.New("network: tls ca file required")
	ErrTLSNoCertificates   = errors.New("network: no certificates found in ca file")
)
