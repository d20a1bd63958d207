package network

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
)

func TestClientConn_AwaitExhaustsBudget(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	cc := NewClientConn(sock, logging.Discard(), testOptions())
	go cc.Serve(context.Background())
	defer cc.Close()

	budget := Budget{Attempts: 15, Delay: 10 * time.Millisecond}
	start := time.Now()
	_, err := cc.Await(context.Background(), budget)

	require.ErrorIs(t, err, ErrResponseTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 15*10*time.Millisecond)
	assert.Equal(t, StateReady, cc.State(), "timeout must not close the connection")
}

func TestClientConn_AwaitReturnsFramesInOrder(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	cc := NewClientConn(sock, logging.Discard(), testOptions())
	go cc.Serve(context.Background())
	defer cc.Close()

	first := message.Frame{Type: message.TypeDataTransfer, Instruction: message.InstGenHashSalt, ArgCount: 1, Data: make([]byte, 32)}
	second := message.Frame{Type: message.TypeServerReturn, Instruction: message.ReturnAccepted}

	go func() {
		_, _ = peer.Write(append(mustEncode(t, first), mustEncode(t, second)...))
	}()

	budget := Budget{Attempts: 50, Delay: 10 * time.Millisecond}
	got, err := cc.Await(context.Background(), budget)
	require.NoError(t, err)
	assert.True(t, got.Equal(first))

	got, err = cc.Await(context.Background(), budget)
	require.NoError(t, err)
	assert.True(t, got.Equal(second))
}

func TestClientConn_SendReachesPeer(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	cc := NewClientConn(sock, logging.Discard(), testOptions())
	go cc.Serve(context.Background())
	defer cc.Close()

	req := message.Frame{Type: message.TypeCommand, Instruction: message.InstGenHashSalt}
	require.NoError(t, cc.SendFrame(req))

	got := readFrame(t, peer)
	assert.True(t, got.Equal(req))
}

func TestClientConn_AwaitOnClosedConnection(t *testing.T) {
	sock, peer := net.Pipe()

	cc := NewClientConn(sock, logging.Discard(), testOptions())
	go cc.Serve(context.Background())

	require.NoError(t, peer.Close())
	waitDone(t, cc.Done())

	_, err := cc.Await(context.Background(), Budget{Attempts: 3, Delay: 10 * time.Millisecond})
	assert.ErrorIs(t, err, ErrConnClosed)
	assert.True(t, cc.CleanClosure())
}

func TestClientConn_AwaitHonoursContext(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	cc := NewClientConn(sock, logging.Discard(), testOptions())
	go cc.Serve(context.Background())
	defer cc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cc.Await(ctx, Budget{Attempts: 3, Delay: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientConn_InboxOverflowCloses(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	opts := testOptions()
	opts.InboxSize = 1
	cc := NewClientConn(sock, logging.Discard(), opts)
	go cc.Serve(context.Background())
	defer cc.Close()

	first := message.Frame{Type: message.TypeDataTransfer, Instruction: message.InstGenHashSalt, ArgCount: 1, Data: make([]byte, 32)}
	second := message.Frame{Type: message.TypeServerReturn, Instruction: message.ReturnAccepted}
	raw := append(mustEncode(t, first), mustEncode(t, second)...)
	go func() { _, _ = peer.Write(raw) }()

	waitDone(t, cc.Done())
	assert.Equal(t, StateClosed, cc.State())
	assert.False(t, cc.CleanClosure())

	budget := Budget{Attempts: 3, Delay: 10 * time.Millisecond}
	got, err := cc.Await(context.Background(), budget)
	require.NoError(t, err)
	assert.True(t, got.Equal(first), "queued frames are still delivered")

	_, err = cc.Await(context.Background(), budget)
	assert.ErrorIs(t, err, ErrConnClosed)
}
