package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, server string) (*Session, error) {
	s := &Session{Server: server}
	var created int64
	err := r.db.QueryRowContext(ctx,
		`SELECT username, token, created_at FROM sessions WHERE server = ?`, server).
		Scan(&s.Username, &s.Token, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", server, err)
	}
	s.CreatedAt = time.UnixMilli(created).UTC()
	return s, nil
}

// Save replaces whatever is stored for s.Server.
func (r *SQLiteRepository) Save(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (server, username, token, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(server) DO UPDATE SET
			username = excluded.username,
			token = excluded.token,
			created_at = excluded.created_at
	`, s.Server, s.Username, s.Token, s.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save session[%s]: %w", s.Server, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, server string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE server = ?`, server)
	if err != nil {
		return fmt.Errorf("failed to delete session[%s]: %w", server, err)
	}
	return nil
}
