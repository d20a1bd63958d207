package network

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/protocol/message"
)

func testOptions() Options {
	o := DefaultOptions()
	o.ReadPollInterval = 10 * time.Millisecond
	return o
}

type recorder struct {
	mu     sync.Mutex
	frames []message.Frame
}

func (r *recorder) handle(_ context.Context, _ Conn, f message.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) snapshot() []message.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]message.Frame(nil), r.frames...)
}

func mustEncode(t *testing.T, f message.Frame) []byte {
	t.Helper()
	raw, err := message.Encode(f)
	require.NoError(t, err)
	return raw
}

func readFrame(t *testing.T, r io.Reader) message.Frame {
	t.Helper()
	hdr := make([]byte, message.HeaderLen)
	_, err := io.ReadFull(r, hdr)
	require.NoError(t, err)

	raw := make([]byte, message.HeaderLen+int(binary.BigEndian.Uint32(hdr[27:31])))
	copy(raw, hdr)
	_, err = io.ReadFull(r, raw[message.HeaderLen:])
	require.NoError(t, err)

	f, err := message.Decode(raw)
	require.NoError(t, err)
	return f
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("connection did not close")
	}
}

func TestServerConn_PartialFrameSurvivesReadTurns(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	rec := &recorder{}
	d := NewDispatcher(logging.Discard())
	d.Register(message.InstRegister, rec.handle)
	sc := NewServerConn(sock, d, logging.Discard(), testOptions())

	f, err := message.Build(message.TypeCommand, message.InstRegister, 1, 0, 0, []byte("alice"))
	require.NoError(t, err)
	raw := mustEncode(t, f)
	split := message.HeaderLen + 2

	go func() { _, _ = peer.Write(raw[:split]) }()
	sc.OnReadable(context.Background())
	assert.Empty(t, rec.snapshot(), "partial frame must not be dispatched")

	// nothing arrives: the turn ends on the poll deadline
	sc.OnReadable(context.Background())
	assert.Empty(t, rec.snapshot())

	go func() { _, _ = peer.Write(raw[split:]) }()
	sc.OnReadable(context.Background())

	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(f))
	assert.False(t, sc.closing.Load())
}

func TestServerConn_ServeDispatchesInOrderAndReplies(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	var order []int64
	var mu sync.Mutex
	d := NewDispatcher(logging.Discard())
	echo := func(_ context.Context, c Conn, f message.Frame) {
		mu.Lock()
		order = append(order, f.Instruction)
		mu.Unlock()
		reply := message.Frame{Type: message.TypeServerReturn, Instruction: f.Instruction}
		assert.NoError(t, c.SendFrame(reply))
	}
	d.Register(message.InstGenHashSalt, echo)
	d.Register(message.InstRegister, echo)

	sc := NewServerConn(sock, d, logging.Discard(), testOptions())
	go sc.Serve(context.Background())

	var stream []byte
	stream = append(stream, mustEncode(t, message.Frame{Type: message.TypeCommand, Instruction: message.InstGenHashSalt})...)
	stream = append(stream, mustEncode(t, message.Frame{Type: message.TypeCommand, Instruction: message.InstRegister})...)
	go func() { _, _ = peer.Write(stream) }()

	first := readFrame(t, peer)
	second := readFrame(t, peer)
	assert.Equal(t, message.InstGenHashSalt, first.Instruction)
	assert.Equal(t, message.InstRegister, second.Instruction)

	mu.Lock()
	assert.Equal(t, []int64{message.InstGenHashSalt, message.InstRegister}, order)
	mu.Unlock()
	assert.Equal(t, StateReady, sc.State())

	require.NoError(t, peer.Close())
	waitDone(t, sc.Done())
	assert.Equal(t, StateClosed, sc.State())
	assert.True(t, sc.CleanClosure())
}

func TestServerConn_UnknownInstructionIsIgnored(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	rec := &recorder{}
	d := NewDispatcher(logging.Discard())
	d.Register(message.InstGenHashSalt, func(ctx context.Context, c Conn, f message.Frame) {
		rec.handle(ctx, c, f)
		_ = c.SendFrame(message.Frame{Type: message.TypeDataTransfer, Instruction: f.Instruction})
	})

	sc := NewServerConn(sock, d, logging.Discard(), testOptions())
	go sc.Serve(context.Background())

	go func() {
		_, _ = peer.Write(mustEncode(t, message.Frame{Type: message.TypeCommand, Instruction: 99}))
		_, _ = peer.Write(mustEncode(t, message.Frame{Type: message.TypeCommand, Instruction: message.InstGenHashSalt}))
	}()

	reply := readFrame(t, peer)
	assert.Equal(t, message.InstGenHashSalt, reply.Instruction)
	require.Len(t, rec.snapshot(), 1)
	assert.Equal(t, StateReady, sc.State())
}

func TestServerConn_CorruptInputClosesWithoutReply(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	rec := &recorder{}
	d := NewDispatcher(logging.Discard())
	d.Register(message.InstGenHashSalt, rec.handle)

	sc := NewServerConn(sock, d, logging.Discard(), testOptions())
	go sc.Serve(context.Background())

	garbage := make([]byte, message.HeaderLen)
	copy(garbage, "not a frame header")
	go func() { _, _ = peer.Write(garbage) }()

	waitDone(t, sc.Done())
	_, err := peer.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, rec.snapshot())
	assert.False(t, sc.CleanClosure())
	assert.Equal(t, StateClosed, sc.State())
}

func TestConn_CloseFlushesQueuedFrames(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	d := NewDispatcher(logging.Discard())
	d.Register(message.InstRegister, func(_ context.Context, c Conn, _ message.Frame) {
		_ = c.SendFrame(message.Frame{Type: message.TypeServerReturn, Instruction: message.ReturnUserExists})
		c.Close()
	})

	sc := NewServerConn(sock, d, logging.Discard(), testOptions())
	go sc.Serve(context.Background())
	go func() {
		_, _ = peer.Write(mustEncode(t, message.Frame{Type: message.TypeCommand, Instruction: message.InstRegister}))
	}()

	reply := readFrame(t, peer)
	assert.Equal(t, message.ReturnUserExists, reply.Instruction)
	waitDone(t, sc.Done())
	assert.ErrorIs(t, sc.Send([]byte("late")), ErrConnClosed)
}

func TestConn_ContextCancelStopsServe(t *testing.T) {
	sock, peer := net.Pipe()
	defer peer.Close()

	sc := NewServerConn(sock, NewDispatcher(logging.Discard()), logging.Discard(), testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	go sc.Serve(ctx)

	require.Eventually(t, func() bool { return sc.State() == StateReady }, time.Second, 5*time.Millisecond)
	cancel()
	waitDone(t, sc.Done())
	assert.Equal(t, StateClosed, sc.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "closing", StateClosing.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
