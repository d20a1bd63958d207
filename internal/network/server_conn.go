package network

import (
	"context"
	"net"

	"github.com/dmitrijs2005/papertrader/internal/logging"
)

// ServerConn is the server side of one accepted connection. Every complete
// frame it reads goes to the Dispatcher.
type ServerConn struct {
	*conn
	dispatcher *Dispatcher
}

var _ Conn = (*ServerConn)(nil)

// NewServerConn wraps an accepted socket. The connection stays Idle until
// Serve completes the handshake.
func NewServerConn(sock net.Conn, d *Dispatcher, logger logging.Logger, opts Options) *ServerConn {
	sc := &ServerConn{
		conn:       newConn(sock, logger.With("remote", sock.RemoteAddr().String()), opts),
		dispatcher: d,
	}
	sc.sink = func(ctx context.Context, raw []byte) {
		sc.dispatcher.Handle(ctx, sc, raw)
	}
	return sc
}
