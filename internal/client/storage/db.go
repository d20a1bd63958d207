// Package storage opens the client's local SQLite database and applies its
// migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/papertrader/internal/client/migrations"
	"github.com/dmitrijs2005/papertrader/internal/client/repositories/sessions"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Sessions sessions.Repository
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite file at dsn and migrates
// it. The caller closes the returned *sql.DB.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}

	return db, &Repositories{Sessions: sessions.NewSQLiteRepository(db)}, nil
}
