// Package account runs the client side of account provisioning: fetching
// salt halves, hashing credentials locally and submitting the Register
// request.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/hashchain"
	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/models"
	"github.com/dmitrijs2005/papertrader/internal/network"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
)

var (
	ErrSaltRetrievalFailed  = errors.New("salt retrieval failed")
	ErrRegistrationRejected = errors.New("registration rejected")
)

// Purpose names what a requested salt half will be used for.
type Purpose int

const (
	PurposeEmail Purpose = iota
	PurposePassword
)

func (p Purpose) String() string {
	if p == PurposePassword {
		return "password"
	}
	return "email"
}

// RejectedError carries the ServerReturn code of a refused registration.
type RejectedError struct {
	Code int64
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("registration rejected: %s", returnName(e.Code))
}

// Is makes every rejection match ErrRegistrationRejected and a taken
// username additionally match common.ErrUserExists.
func (e *RejectedError) Is(target error) bool {
	switch target {
	case ErrRegistrationRejected:
		return true
	case common.ErrUserExists:
		return e.Code == message.ReturnUserExists
	case common.ErrDbWriteFailed:
		return e.Code == message.ReturnDbWriteFailed
	}
	return false
}

func returnName(code int64) string {
	switch code {
	case message.ReturnUserExists:
		return "user exists"
	case message.ReturnDbWriteFailed:
		return "database write failed"
	case message.ReturnInvalidRequest:
		return "invalid request"
	case message.ReturnInternalError:
		return "internal server error"
	default:
		return fmt.Sprintf("code %d", code)
	}
}

// Session is what an accepted registration yields.
type Session struct {
	Token string
}

// Transport is the request / response surface of a client connection.
type Transport interface {
	SendFrame(f message.Frame) error
	Await(ctx context.Context, b network.Budget) (message.Frame, error)
}

type Provisioner struct {
	transport Transport
	policy    hashchain.Policy
	budget    network.Budget
	logger    logging.Logger
}

func NewProvisioner(t Transport, policy hashchain.Policy, budget network.Budget, logger logging.Logger) *Provisioner {
	return &Provisioner{
		transport: t,
		policy:    policy,
		budget:    budget,
		logger:    logger.With("module", "account"),
	}
}

// RequestSalt asks the server for a fresh salt half. Any failure, including
// a reply of the wrong shape or no reply within the budget, is reported as
// ErrSaltRetrievalFailed.
func (p *Provisioner) RequestSalt(ctx context.Context, purpose Purpose) ([]byte, error) {
	req := message.Frame{Type: message.TypeCommand, Instruction: message.InstGenHashSalt}
	if err := p.transport.SendFrame(req); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSaltRetrievalFailed, purpose, err)
	}

	reply, err := p.transport.Await(ctx, p.budget)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSaltRetrievalFailed, purpose, err)
	}

	if !message.Validate(reply, message.TypeDataTransfer,
		message.WithArgCount(1), message.WithChunkIndex(0), message.WithDataLen(hashchain.HalfSaltLen)) {
		return nil, fmt.Errorf("%w: %s: unexpected reply %s", ErrSaltRetrievalFailed, purpose, reply)
	}

	half := make([]byte, hashchain.HalfSaltLen)
	copy(half, reply.Data)
	return half, nil
}

// CreateAccount provisions username on the server. email and password are
// hashed locally and wiped before the request is sent; the raw values never
// leave the process.
func (p *Provisioner) CreateAccount(ctx context.Context, username string, email, password []byte) (Session, error) {
	defer common.WipeByteArray(email)
	defer common.WipeByteArray(password)

	if username == "" || len(username) > common.MaxUsernameLen {
		return Session{}, common.ErrInvalidUsername
	}

	emailHalf, err := p.RequestSalt(ctx, PurposeEmail)
	if err != nil {
		return Session{}, err
	}
	passHalf, err := p.RequestSalt(ctx, PurposePassword)
	if err != nil {
		return Session{}, err
	}

	emailRec, err := hashchain.ClientHash(email, emailHalf, p.policy.EmailClientIterations)
	if err != nil {
		return Session{}, fmt.Errorf("hash email: %w", err)
	}
	passRec, err := hashchain.ClientHash(password, passHalf, p.policy.PasswordClientIterations)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	common.WipeByteArray(email)
	common.WipeByteArray(password)

	req, err := message.Build(message.TypeCommand, message.InstRegister, message.RegisterArgCount, 0, 0,
		emailRec.Hash, emailRec.ClientSalt,
		passRec.Hash, passRec.ClientSalt,
		username, models.NewPortfolio())
	common.WipeByteArray(emailRec.Hash)
	common.WipeByteArray(passRec.Hash)
	if err != nil {
		return Session{}, err
	}

	if err := p.transport.SendFrame(req); err != nil {
		return Session{}, fmt.Errorf("send register: %w", err)
	}

	reply, err := p.transport.Await(ctx, p.budget)
	if err != nil {
		return Session{}, fmt.Errorf("await register reply: %w", err)
	}

	if !message.Validate(reply, message.TypeServerReturn, message.WithInstruction(message.ReturnAccepted)) {
		p.logger.Info(ctx, "registration rejected", "username", username, "reply", reply.String())
		if reply.Type != message.TypeServerReturn {
			return Session{}, &RejectedError{Code: message.ReturnInvalidRequest}
		}
		return Session{}, &RejectedError{Code: reply.Instruction}
	}

	var s Session
	if reply.ArgCount == 1 {
		fields, err := message.Fields(reply.Data, 1)
		if err != nil {
			return Session{}, fmt.Errorf("decode session: %w", err)
		}
		s.Token = string(fields[0])
	}

	p.logger.Info(ctx, "account created", "username", username)
	return s, nil
}
