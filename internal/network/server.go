package network

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/papertrader/internal/logging"
)

// Backoff between failed Accept calls, doubled on every consecutive failure.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Server accepts TLS connections and serves each one on its own goroutine.
type Server struct {
	addr       string
	tlsConfig  *tls.Config
	dispatcher *Dispatcher
	logger     logging.Logger
	opts       Options

	ready    chan struct{}
	mu       sync.Mutex
	listener net.Listener
}

func NewServer(addr string, tlsConfig *tls.Config, d *Dispatcher, logger logging.Logger, opts Options) *Server {
	return &Server{
		addr:       addr,
		tlsConfig:  tlsConfig,
		dispatcher: d,
		logger:     logger.With("module", "server"),
		opts:       opts.withDefaults(),
		ready:      make(chan struct{}),
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens until ctx is cancelled, then waits for every open connection
// to finish.
func (s *Server) Run(ctx context.Context) error {
	ln, err := tls.Listen("tcp", s.addr, s.tlsConfig)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info(ctx, "listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	return s.serve(ctx, ln)
}

// serve accepts on ln until it is closed or ctx is cancelled.
func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	var delay time.Duration
	for {
		sock, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info(ctx, "server stopped")
				return nil
			}
			delay = nextAcceptDelay(delay)
			s.logger.Warn(ctx, "accept failed", "error", err, "retry_in", delay.String())
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		delay = 0

		sc := NewServerConn(sock, s.dispatcher, s.logger, s.opts)
		s.logger.Debug(ctx, "connection accepted", "remote", sc.RemoteAddr())

		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.Serve(ctx)
		}()
	}
}

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	if d *= 2; d > maxAcceptDelay {
		return maxAcceptDelay
	}
	return d
}
