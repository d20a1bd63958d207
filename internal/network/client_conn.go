package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
)

// ClientConn is the client side of a connection. Decoded frames are queued
// for Await in arrival order. A frame that does not fit in the inbox closes
// the connection.
type ClientConn struct {
	*conn
	inbox chan message.Frame
}

var _ Conn = (*ClientConn)(nil)

// NewClientConn wraps a dialed socket. Serve must run for frames to arrive.
func NewClientConn(sock net.Conn, logger logging.Logger, opts Options) *ClientConn {
	c := newConn(sock, logger.With("remote", sock.RemoteAddr().String()), opts)
	cc := &ClientConn{
		conn:  c,
		inbox: make(chan message.Frame, c.opts.InboxSize),
	}
	cc.sink = cc.receive
	return cc
}

func (cc *ClientConn) receive(ctx context.Context, raw []byte) {
	f, err := message.Decode(raw)
	if err != nil {
		cc.logger.Warn(ctx, "closing connection on undecodable frame", "error", err)
		cc.Close()
		return
	}
	select {
	case cc.inbox <- f:
	default:
		// replies are matched to requests by order, so none may be dropped
		cc.logger.Warn(ctx, "closing connection, inbox full", "frame", f.String())
		cc.Close()
	}
}

// Await waits for the next frame using a bounded poll: at most b.Attempts
// checks of the inbox, b.Delay apart. When the budget runs out it returns
// ErrResponseTimeout and the connection stays open.
func (cc *ClientConn) Await(ctx context.Context, b Budget) (message.Frame, error) {
	if b.Attempts <= 0 {
		b = DefaultBudget()
	}

	timer := time.NewTimer(b.Delay)
	defer timer.Stop()

	for attempt := 0; attempt < b.Attempts; attempt++ {
		select {
		case f := <-cc.inbox:
			return f, nil
		default:
		}

		timer.Reset(b.Delay)
		select {
		case f := <-cc.inbox:
			return f, nil
		case <-timer.C:
		case <-ctx.Done():
			return message.Frame{}, ctx.Err()
		case <-cc.done:
			select {
			case f := <-cc.inbox:
				return f, nil
			default:
			}
			return message.Frame{}, ErrConnClosed
		}
	}
	return message.Frame{}, fmt.Errorf("%w after %d attempts", ErrResponseTimeout, b.Attempts)
}

// Dial connects to addr over TLS and starts serving the connection in the
// background. Closing the returned connection stops it.
func Dial(ctx context.Context, addr string, cfg *tls.Config, logger logging.Logger, opts Options) (*ClientConn, error) {
	opts = opts.withDefaults()
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: opts.HandshakeTimeout},
		Config:    cfg,
	}
	sock, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	cc := NewClientConn(sock, logger, opts)
	go cc.Serve(context.Background())
	return cc, nil
}
