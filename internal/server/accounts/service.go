// Package accounts implements the server side of account provisioning:
// issuing salt halves, re-hashing the client's credential hashes and
// persisting the resulting account.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/hashchain"
	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/models"
)

// Store is the persistence the service needs. Create must report a username
// collision as common.ErrUserExists.
type Store interface {
	UsernameExists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, a *models.Account) error
}

// RegisterRequest is the content of a Register frame.
type RegisterRequest struct {
	Username        string
	EmailHash       []byte
	ClientEmailSalt []byte
	PassHash        []byte
	ClientPassSalt  []byte
}

// Validate checks field sizes and the username.
func (r RegisterRequest) Validate() error {
	switch {
	case len(r.EmailHash) != hashchain.HashOutputLen:
		return fmt.Errorf("email hash: %d bytes", len(r.EmailHash))
	case len(r.ClientEmailSalt) != hashchain.HalfSaltLen:
		return fmt.Errorf("email salt: %d bytes", len(r.ClientEmailSalt))
	case len(r.PassHash) != hashchain.HashOutputLen:
		return fmt.Errorf("password hash: %d bytes", len(r.PassHash))
	case len(r.ClientPassSalt) != hashchain.HalfSaltLen:
		return fmt.Errorf("password salt: %d bytes", len(r.ClientPassSalt))
	}
	return ValidateUsername(r.Username)
}

// ValidateUsername accepts 1 to common.MaxUsernameLen bytes of UTF-8.
func ValidateUsername(name string) error {
	if name == "" || len(name) > common.MaxUsernameLen || !utf8.ValidString(name) {
		return common.ErrInvalidUsername
	}
	return nil
}

type Service struct {
	store  Store
	policy hashchain.Policy
	logger logging.Logger
}

func NewService(store Store, policy hashchain.Policy, logger logging.Logger) *Service {
	return &Service{
		store:  store,
		policy: policy,
		logger: logger.With("module", "accounts"),
	}
}

// Register runs the server hashing phase over the client hashes and stores
// the account. It returns common.ErrUserExists when the username is taken,
// an error wrapping common.ErrDbWriteFailed when the store fails, and one
// wrapping common.ErrorInternal when hashing fails.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.UsernameExists(ctx, req.Username)
	switch {
	case err != nil:
		// the unique constraint still guards Create
		s.logger.Warn(ctx, "username pre-check failed", "username", req.Username, "error", err)
	case exists:
		return nil, common.ErrUserExists
	}

	email, err := hashchain.ServerHash(req.EmailHash, s.policy.ServerIterations)
	if err != nil {
		return nil, fmt.Errorf("%w: email hash: %v", common.ErrorInternal, err)
	}
	pass, err := hashchain.ServerHash(req.PassHash, s.policy.ServerIterations)
	if err != nil {
		return nil, fmt.Errorf("%w: password hash: %v", common.ErrorInternal, err)
	}

	a := &models.Account{
		ID:              uuid.New(),
		Username:        req.Username,
		EmailHash:       email.Hash,
		ServerEmailSalt: email.Salt,
		ClientEmailSalt: req.ClientEmailSalt,
		PassHash:        pass.Hash,
		ServerPassSalt:  pass.Salt,
		ClientPassSalt:  req.ClientPassSalt,
		IsPass:          true,
		Portfolio:       models.NewPortfolio(),
		Transactions:    []models.Position{},
	}

	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("%w: %v", common.ErrDbWriteFailed, err)
	}

	s.logger.Info(ctx, "account created", "username", a.Username, "id", a.ID.String())
	return a, nil
}
