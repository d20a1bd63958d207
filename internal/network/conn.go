package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
)

// State is the lifecycle position of a connection.
type State int32

const (
	StateIdle State = iota
	StateReady
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Conn is the capability set shared by both connection roles. Handlers
// receive a Conn and use Send / SendFrame to reply and Close to reject.
type Conn interface {
	// OnReadable runs one read turn.
	OnReadable(ctx context.Context)
	// OnWritable flushes every queued frame to the socket.
	OnWritable()
	// Send queues plaintext for the next writable turn.
	Send(b []byte) error
	SendFrame(f message.Frame) error
	// Close marks the connection as closing. The owning Serve loop flushes
	// the queue and releases the socket.
	Close()
	State() State
	CleanClosure() bool
	RemoteAddr() string
}

// handshaker is implemented by *tls.Conn.
type handshaker interface {
	HandshakeContext(ctx context.Context) error
}

// frameSink receives one complete raw frame.
type frameSink func(ctx context.Context, raw []byte)

// conn is the role-independent state machine.
type conn struct {
	sock   net.Conn
	opts   Options
	logger logging.Logger
	sink   frameSink

	state   atomic.Int32
	closing atomic.Bool
	clean   atomic.Bool

	// acc and readBuf belong to the Serve goroutine.
	acc     []byte
	readBuf []byte

	outbox     chan []byte
	wake       chan struct{}
	stopWriter chan struct{}
	writerDone chan struct{}

	finishOnce sync.Once
	done       chan struct{}
}

func newConn(sock net.Conn, logger logging.Logger, opts Options) *conn {
	opts = opts.withDefaults()
	return &conn{
		sock:       sock,
		opts:       opts,
		logger:     logger,
		readBuf:    make([]byte, opts.ReadBufferSize),
		outbox:     make(chan []byte, opts.OutboxSize),
		wake:       make(chan struct{}, 1),
		stopWriter: make(chan struct{}),
		writerDone: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (c *conn) State() State       { return State(c.state.Load()) }
func (c *conn) CleanClosure() bool { return c.clean.Load() }
func (c *conn) RemoteAddr() string { return c.sock.RemoteAddr().String() }

// Done is closed once the socket has been released.
func (c *conn) Done() <-chan struct{} { return c.done }

// Serve owns the connection until it is closed: it completes the TLS
// handshake, then runs read turns until the connection is closing or ctx is
// cancelled, then flushes and releases the socket.
func (c *conn) Serve(ctx context.Context) {
	defer c.finish(ctx)

	if err := c.handshake(ctx); err != nil {
		c.logger.Warn(ctx, "tls handshake failed", "error", err)
		c.markClosing(false)
		return
	}
	c.state.Store(int32(StateReady))
	go c.writeLoop()

	for !c.closing.Load() {
		if ctx.Err() != nil {
			c.markClosing(false)
			break
		}
		c.OnReadable(ctx)
	}
}

func (c *conn) handshake(ctx context.Context) error {
	hs, ok := c.sock.(handshaker)
	if !ok {
		return nil
	}
	hctx, cancel := context.WithTimeout(ctx, c.opts.HandshakeTimeout)
	defer cancel()
	return hs.HandshakeContext(hctx)
}

// OnReadable pulls available plaintext from the socket. A read deadline
// expiring is the would-block case and ends the turn quietly. EOF, or a
// zero-byte read, is a graceful remote close; any other error is fatal to
// the connection.
func (c *conn) OnReadable(ctx context.Context) {
	if c.closing.Load() {
		return
	}
	_ = c.sock.SetReadDeadline(time.Now().Add(c.opts.ReadPollInterval))

	n, err := c.sock.Read(c.readBuf)
	if n > 0 {
		c.acc = append(c.acc, c.readBuf[:n]...)
		c.drain(ctx)
	}

	switch {
	case err == nil && n == 0:
		c.markClosing(true)
	case err == nil:
	case isTimeout(err):
	case errors.Is(err, io.EOF):
		c.logger.Debug(ctx, "peer closed connection")
		c.markClosing(true)
	case c.closing.Load():
		// local Close interrupted the read
	default:
		c.logger.Warn(ctx, "read failed", "error", err)
		c.markClosing(false)
	}
}

// drain hands every complete frame in the accumulation buffer to the sink.
func (c *conn) drain(ctx context.Context) {
	for len(c.acc) > 0 && !c.closing.Load() {
		n, err := message.FrameLen(c.acc)
		if errors.Is(err, message.ErrIncomplete) {
			return
		}
		if err != nil {
			c.logger.Warn(ctx, "dropping connection on corrupt frame header", "error", err)
			c.acc = c.acc[:0]
			c.markClosing(false)
			return
		}

		raw := make([]byte, n)
		copy(raw, c.acc[:n])
		c.acc = append(c.acc[:0], c.acc[n:]...)

		c.sink(ctx, raw)
	}
}

// OnWritable writes out everything queued so far.
func (c *conn) OnWritable() {
	for {
		select {
		case b := <-c.outbox:
			if err := c.write(b); err != nil {
				c.logger.Warn(context.Background(), "write failed", "error", err)
				c.markClosing(false)
				c.discardOutbox()
				return
			}
		default:
			return
		}
	}
}

func (c *conn) write(b []byte) error {
	_ = c.sock.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	_, err := c.sock.Write(b)
	return err
}

func (c *conn) discardOutbox() {
	for {
		select {
		case <-c.outbox:
		default:
			return
		}
	}
}

func (c *conn) writeLoop() {
	defer close(c.writerDone)
	for {
		select {
		case <-c.wake:
			c.OnWritable()
		case <-c.stopWriter:
			c.OnWritable()
			return
		}
	}
}

// Send queues b for the writer goroutine.
func (c *conn) Send(b []byte) error {
	if c.closing.Load() {
		return ErrConnClosed
	}
	select {
	case c.outbox <- b:
	case <-c.done:
		return ErrConnClosed
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

func (c *conn) SendFrame(f message.Frame) error {
	raw, err := message.Encode(f)
	if err != nil {
		return err
	}
	return c.Send(raw)
}

// Close marks the connection as closing and interrupts a pending read so
// the Serve loop notices promptly.
func (c *conn) Close() {
	c.markClosing(false)
	_ = c.sock.SetReadDeadline(time.Now())
}

func (c *conn) markClosing(clean bool) {
	if clean {
		c.clean.Store(true)
	}
	c.closing.Store(true)
}

// finish flushes what is queued, lets the TLS layer send its close alert
// and releases the socket.
func (c *conn) finish(ctx context.Context) {
	c.finishOnce.Do(func() {
		started := c.State() == StateReady
		c.state.Store(int32(StateClosing))
		if started {
			close(c.stopWriter)
			<-c.writerDone
		}
		if err := c.sock.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			c.logger.Debug(ctx, "socket close", "error", err)
		}
		c.state.Store(int32(StateClosed))
		close(c.done)
		c.logger.Debug(ctx, "connection closed", "clean", c.clean.Load())
	})
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
