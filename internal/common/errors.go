// Package common defines shared constants and sentinel errors used across
// client and server layers of papertrader. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Account provisioning errors.
	ErrUserExists      = errors.New("user already exists")
	ErrDbWriteFailed   = errors.New("database write failed")
	ErrInvalidUsername = errors.New("invalid username")
)
