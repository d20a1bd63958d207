package accounts

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/dbx"
	"github.com/dmitrijs2005/papertrader/internal/models"
	"github.com/dmitrijs2005/papertrader/internal/server/repositories/repomanager"
)

// SQLStore backs Store with the repositories of a RepositoryManager.
type SQLStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSQLStore(db *sql.DB, m repomanager.RepositoryManager) *SQLStore {
	return &SQLStore{db: db, repomanager: m}
}

func (s *SQLStore) UsernameExists(ctx context.Context, name string) (bool, error) {
	return s.repomanager.Accounts(s.db).UsernameExists(ctx, name)
}

// Create re-checks the username and inserts the account in one transaction.
func (s *SQLStore) Create(ctx context.Context, a *models.Account) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		exists, err := repo.UsernameExists(ctx, a.Username)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrUserExists
		}
		return repo.Create(ctx, a)
	})
}
