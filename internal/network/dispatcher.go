package network

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
)

// HandlerFunc handles one decoded frame. Handlers own their replies and
// reject a peer by closing the connection.
type HandlerFunc func(ctx context.Context, c Conn, f message.Frame)

// Dispatcher routes frames to handlers by instruction code.
type Dispatcher struct {
	logger logging.Logger

	mu       sync.RWMutex
	handlers map[int64]HandlerFunc
}

func NewDispatcher(logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   logger.With("module", "dispatcher"),
		handlers: make(map[int64]HandlerFunc),
	}
}

// Register installs h for inst, replacing any previous handler.
func (d *Dispatcher) Register(inst int64, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[inst] = h
}

// Handle decodes raw and dispatches it. A frame that does not decode closes
// the connection without a reply.
func (d *Dispatcher) Handle(ctx context.Context, c Conn, raw []byte) {
	f, err := message.Decode(raw)
	if err != nil {
		d.logger.Warn(ctx, "closing connection on undecodable frame", "remote", c.RemoteAddr(), "error", err)
		c.Close()
		return
	}
	d.Dispatch(ctx, c, f)
}

// Dispatch runs the handler registered for f.Instruction. Unknown
// instructions are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, c Conn, f message.Frame) {
	d.mu.RLock()
	h, ok := d.handlers[f.Instruction]
	d.mu.RUnlock()

	if !ok {
		d.logger.Debug(ctx, "ignoring unknown instruction", "frame", f.String())
		return
	}
	h(ctx, c, f)
}
