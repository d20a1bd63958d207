// Package sessions stores the session token the server issued for an
// account, one per server endpoint.
package sessions

import (
	"context"
	"time"
)

type Session struct {
	Server    string
	Username  string
	Token     string
	CreatedAt time.Time
}

type Repository interface {
	// Get returns common.ErrorNotFound when nothing is stored for server.
	Get(ctx context.Context, server string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, server string) error
}
