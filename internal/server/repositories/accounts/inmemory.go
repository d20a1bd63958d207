package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/models"
)

// InMemoryRepository keeps accounts in a map. It is used when no database
// DSN is configured and in tests.
type InMemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[string]models.Account)}
}

func (r *InMemoryRepository) UsernameExists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[name]
	return ok, nil
}

func (r *InMemoryRepository) Create(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.Username]; ok {
		return common.ErrUserExists
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.accounts[a.Username] = *a
	return nil
}
