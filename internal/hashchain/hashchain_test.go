package hashchain

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap iteration count so the suite stays fast; the structure under test
// does not depend on it.
const testIterations = 16

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 175_000, p.EmailClientIterations)
	assert.Equal(t, 250_000, p.PasswordClientIterations)
	assert.Equal(t, 500_000, p.ServerIterations)
}

func TestSaltInvariant(t *testing.T) {
	for i := 0; i < 8; i++ {
		server, err := NewHalfSalt()
		require.NoError(t, err)
		client, err := NewHalfSalt()
		require.NoError(t, err)

		assert.Len(t, server, HashOutputLen/2)
		assert.Len(t, client, HashOutputLen/2)

		full, err := JoinSalt(server, client)
		require.NoError(t, err)
		assert.Len(t, full, HashOutputLen)
		assert.Equal(t, server, full[:HalfSaltLen], "server half comes first")
		assert.Equal(t, client, full[HalfSaltLen:])
	}
}

func TestJoinSalt_RejectsWrongHalves(t *testing.T) {
	good := make([]byte, HalfSaltLen)
	_, err := JoinSalt(good[:16], good)
	require.ErrorIs(t, err, ErrInvalidSalt)
	_, err = JoinSalt(good, append(good, 0))
	require.ErrorIs(t, err, ErrInvalidSalt)
}

func TestHash_KnownVector(t *testing.T) {
	// PBKDF2-HMAC-SHA512, P="password", S="salt", c=1.
	got, err := Hash([]byte("password"), []byte("salt"), 1)
	require.NoError(t, err)
	want := "867f70cf1ade02cff3752599a3a53dc4af34c7a669815ae5d513554e1c8cf252" +
		"c02d470a285a0501bad999bfe943c08f050235d7d68b1da55e63f73b60a57fce"
	assert.Equal(t, want, hex.EncodeToString(got))
}

func TestHash_RejectsNonPositiveIterations(t *testing.T) {
	_, err := Hash([]byte("x"), []byte("y"), 0)
	require.ErrorIs(t, err, ErrInvalidIterations)
}

func TestClientHash_NonDeterministic(t *testing.T) {
	secret := []byte("goodlilpassword")
	serverHalf, err := NewHalfSalt()
	require.NoError(t, err)

	a, err := ClientHash(secret, serverHalf, testIterations)
	require.NoError(t, err)
	b, err := ClientHash(secret, serverHalf, testIterations)
	require.NoError(t, err)

	assert.Len(t, a.Hash, HashOutputLen)
	assert.Len(t, a.ClientSalt, HalfSaltLen)
	assert.Equal(t, serverHalf, a.Salt[:HalfSaltLen])
	assert.Equal(t, a.ClientSalt, a.Salt[HalfSaltLen:])

	assert.False(t, bytes.Equal(a.Hash, b.Hash), "same input must not give the same hash")
	assert.False(t, bytes.Equal(a.ClientSalt, b.ClientSalt), "client half must be fresh")
}

func TestClientHash_RejectsShortServerHalf(t *testing.T) {
	_, err := ClientHash([]byte("p"), make([]byte, 16), testIterations)
	require.ErrorIs(t, err, ErrInvalidSalt)
}

func TestServerHash_FreshSaltEachRun(t *testing.T) {
	clientHash := bytes.Repeat([]byte{7}, HashOutputLen)

	a, err := ServerHash(clientHash, testIterations)
	require.NoError(t, err)
	b, err := ServerHash(clientHash, testIterations)
	require.NoError(t, err)

	assert.Len(t, a.Salt, HashOutputLen)
	assert.Len(t, a.Hash, HashOutputLen)
	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestChain_BothPhasesRecompute(t *testing.T) {
	serverHalf, err := NewHalfSalt()
	require.NoError(t, err)

	client, err := ClientHash([]byte("hunter2"), serverHalf, testIterations)
	require.NoError(t, err)
	stored, err := ServerHash(client.Hash, testIterations*2)
	require.NoError(t, err)

	h, err := Hash([]byte("hunter2"), client.Salt, testIterations)
	require.NoError(t, err)
	assert.Equal(t, client.Hash, h)

	h, err = Hash(client.Hash, stored.Salt, testIterations*2)
	require.NoError(t, err)
	assert.Equal(t, stored.Hash, h)

	h, err = Hash([]byte("hunter3"), client.Salt, testIterations)
	require.NoError(t, err)
	assert.NotEqual(t, client.Hash, h)

	h, err = Hash([]byte("hunter2"), stored.Salt, testIterations*2)
	require.NoError(t, err)
	assert.NotEqual(t, stored.Hash, h, "stored hash is not the client hash")

	h, err = Hash(client.Hash, stored.Salt, testIterations)
	require.NoError(t, err)
	assert.NotEqual(t, stored.Hash, h, "iteration count is part of the chain")
}
