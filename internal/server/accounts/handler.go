package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/hashchain"
	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/models"
	"github.com/dmitrijs2005/papertrader/internal/network"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
)

// TokenIssuer signs the session token returned with an accepted registration.
type TokenIssuer interface {
	Issue(accountID uuid.UUID) (string, error)
}

// Handler answers the provisioning instructions.
type Handler struct {
	svc    *Service
	tokens TokenIssuer
	logger logging.Logger
}

func NewHandler(svc *Service, tokens TokenIssuer, logger logging.Logger) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		logger: logger.With("module", "accounts"),
	}
}

// RegisterRoutes installs the handler's instructions on d.
func (h *Handler) RegisterRoutes(d *network.Dispatcher) {
	d.Register(message.InstGenHashSalt, h.GenHashSalt)
	d.Register(message.InstRegister, h.Register)
}

// GenHashSalt replies with a fresh server salt half. A malformed request
// closes the connection.
func (h *Handler) GenHashSalt(ctx context.Context, c network.Conn, f message.Frame) {
	if !message.Validate(f, message.TypeCommand, message.WithArgCount(0)) {
		h.reject(ctx, c, f)
		return
	}

	half, err := hashchain.NewHalfSalt()
	if err != nil {
		h.logger.Error(ctx, "salt generation failed", "error", err)
		h.reply(ctx, c, message.ReturnInternalError)
		return
	}

	// the half-salt is the whole payload, no length prefix
	reply := message.Frame{
		Type:        message.TypeDataTransfer,
		Instruction: message.InstGenHashSalt,
		ArgCount:    1,
		Data:        half,
	}
	if err := c.SendFrame(reply); err != nil {
		h.logger.Warn(ctx, "send salt reply", "error", err)
	}
}

// Register provisions an account from a Register frame. A frame with the
// wrong shape closes the connection; bad field contents and store outcomes
// are answered with a ServerReturn code.
func (h *Handler) Register(ctx context.Context, c network.Conn, f message.Frame) {
	if !message.Validate(f, message.TypeCommand,
		message.WithArgCount(message.RegisterArgCount), message.WithChunkIndex(0)) {
		h.reject(ctx, c, f)
		return
	}

	// Provisioning is not interrupted once a request is accepted.
	ctx = context.WithoutCancel(ctx)

	req, err := parseRegister(f)
	if err != nil {
		h.logger.Warn(ctx, "invalid register request", "remote", c.RemoteAddr(), "error", err)
		h.reply(ctx, c, message.ReturnInvalidRequest)
		return
	}

	acc, err := h.svc.Register(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrUserExists):
		h.logger.Info(ctx, "username taken", "username", req.Username)
		h.reply(ctx, c, message.ReturnUserExists)
		return
	case errors.Is(err, common.ErrDbWriteFailed):
		h.logger.Error(ctx, "account write failed", "username", req.Username, "error", err)
		h.reply(ctx, c, message.ReturnDbWriteFailed)
		return
	case errors.Is(err, common.ErrInvalidUsername):
		h.reply(ctx, c, message.ReturnInvalidRequest)
		return
	default:
		h.logger.Error(ctx, "register failed", "username", req.Username, "error", err)
		h.reply(ctx, c, message.ReturnInternalError)
		return
	}

	token, err := h.tokens.Issue(acc.ID)
	if err != nil {
		h.logger.Error(ctx, "issue session token", "error", err)
		h.reply(ctx, c, message.ReturnInternalError)
		return
	}

	reply, err := message.Build(message.TypeServerReturn, message.ReturnAccepted, 1, 0, 0, token)
	if err != nil {
		h.logger.Error(ctx, "build accepted reply", "error", err)
		return
	}
	if err := c.SendFrame(reply); err != nil {
		h.logger.Warn(ctx, "send accepted reply", "error", err)
	}
}

func parseRegister(f message.Frame) (RegisterRequest, error) {
	fields, err := message.Fields(f.Data, message.RegisterArgCount)
	if err != nil {
		return RegisterRequest{}, err
	}

	var p models.Portfolio
	if err := p.UnmarshalBinary(fields[5]); err != nil {
		return RegisterRequest{}, err
	}
	if !p.Empty() {
		return RegisterRequest{}, errors.New("portfolio must be empty at registration")
	}

	req := RegisterRequest{
		EmailHash:       fields[0],
		ClientEmailSalt: fields[1],
		PassHash:        fields[2],
		ClientPassSalt:  fields[3],
		Username:        string(fields[4]),
	}
	return req, req.Validate()
}

func (h *Handler) reply(ctx context.Context, c network.Conn, code int64) {
	if err := c.SendFrame(message.Frame{Type: message.TypeServerReturn, Instruction: code}); err != nil {
		h.logger.Warn(ctx, "send reply", "code", code, "error", err)
	}
}

func (h *Handler) reject(ctx context.Context, c network.Conn, f message.Frame) {
	h.logger.Warn(ctx, "closing connection on malformed request", "remote", c.RemoteAddr(), "frame", f.String())
	c.Close()
}
