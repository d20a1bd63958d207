package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/dbx"
	"github.com/dmitrijs2005/papertrader/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, name string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	portfolio, err := a.Portfolio.MarshalBinary()
	if err != nil {
		return err
	}
	transactions, err := models.MarshalPositions(a.Transactions)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO accounts (id, username,
		     email_hash, server_email_salt, client_email_salt,
		     pass_hash, server_pass_salt, client_pass_salt,
		     is_pass, portfolio, transactions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		a.ID, a.Username,
		a.EmailHash, a.ServerEmailSalt, a.ClientEmailSalt,
		a.PassHash, a.ServerPassSalt, a.ClientPassSalt,
		a.IsPass, string(portfolio), string(transactions),
	).Scan(&a.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrUserExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
