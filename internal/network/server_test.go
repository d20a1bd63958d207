package network

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
	"github.com/dmitrijs2005/papertrader/internal/testutil/tlstest"
)

func TestServer_TLSRoundTrip(t *testing.T) {
	ca := tlstest.NewAuthority(t, "papertrader test ca")
	certFile, keyFile := ca.IssueServerCert(t, "localhost")

	serverTLS, err := LoadServerTLS(certFile, keyFile)
	require.NoError(t, err)
	clientTLS, err := LoadClientTLS(ca.CAFile(), "localhost", false)
	require.NoError(t, err)

	d := NewDispatcher(logging.Discard())
	d.Register(message.InstGenHashSalt, func(_ context.Context, c Conn, f message.Frame) {
		_ = c.SendFrame(message.Frame{Type: message.TypeDataTransfer, Instruction: f.Instruction, ArgCount: 1, Data: make([]byte, 32)})
	})

	srv := NewServer("127.0.0.1:0", serverTLS, d, logging.Discard(), testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	cc, err := Dial(context.Background(), srv.Addr().String(), clientTLS, logging.Discard(), testOptions())
	require.NoError(t, err)

	require.NoError(t, cc.SendFrame(message.Frame{Type: message.TypeCommand, Instruction: message.InstGenHashSalt}))
	reply, err := cc.Await(context.Background(), Budget{Attempts: 100, Delay: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, message.Validate(reply, message.TypeDataTransfer,
		message.WithArgCount(1), message.WithChunkIndex(0), message.WithDataLen(32)))

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	waitDone(t, cc.Done())
	assert.Equal(t, StateClosed, cc.State())
}

func TestServer_ListenError(t *testing.T) {
	srv := NewServer("127.0.0.1:99999", nil, NewDispatcher(logging.Discard()), logging.Discard(), Options{})
	err := srv.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, srv.Addr())
}

// flakyListener fails Accept with a temporary error fails times, then
// reports itself closed.
type flakyListener struct {
	fails int

	mu    sync.Mutex
	calls []time.Time
}

func (l *flakyListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, time.Now())
	if len(l.calls) <= l.fails {
		return nil, errors.New("accept: too many open files")
	}
	return nil, net.ErrClosed
}

func (l *flakyListener) Close() error   { return nil }
func (l *flakyListener) Addr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }

func TestServer_AcceptErrorsBackOff(t *testing.T) {
	srv := NewServer("", nil, NewDispatcher(logging.Discard()), logging.Discard(), testOptions())
	ln := &flakyListener{fails: 4}

	require.NoError(t, srv.serve(context.Background(), ln))

	require.Len(t, ln.calls, 5)
	want := minAcceptDelay
	for i := 1; i < len(ln.calls); i++ {
		assert.GreaterOrEqual(t, ln.calls[i].Sub(ln.calls[i-1]), want, "retry %d", i)
		want *= 2
	}
}

func TestServer_AcceptBackoffStopsOnCancel(t *testing.T) {
	srv := NewServer("", nil, NewDispatcher(logging.Discard()), logging.Discard(), testOptions())
	ln := &flakyListener{fails: 1 << 30}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestNextAcceptDelay(t *testing.T) {
	assert.Equal(t, minAcceptDelay, nextAcceptDelay(0))
	assert.Equal(t, 2*minAcceptDelay, nextAcceptDelay(minAcceptDelay))
	assert.Equal(t, maxAcceptDelay, nextAcceptDelay(maxAcceptDelay))
	assert.Equal(t, maxAcceptDelay, nextAcceptDelay(700*time.Millisecond))
}
