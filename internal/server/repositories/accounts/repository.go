package accounts

import (
	"context"

	"github.com/dmitrijs2005/papertrader/internal/models"
)

// Repository stores provisioned accounts keyed by a unique username.
type Repository interface {
	// UsernameExists reports whether an account already uses name.
	UsernameExists(ctx context.Context, name string) (bool, error)
	// Create inserts a. A username collision yields common.ErrUserExists.
	Create(ctx context.Context, a *models.Account) error
}
