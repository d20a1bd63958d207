// Package hashchain implements the two-phase salted credential hashing used
// at account creation.
//
// The client hashes the secret with a salt made of a server-issued half and
// a half it draws itself, then sends the hash and its own half. The server
// treats that hash as new secret material and hashes it again with a fresh
// full salt and a higher iteration count. Only the server result is stored,
// so the stored value cannot be replayed as a login credential and a client
// never learns the stored form.
package hashchain

import (
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// HashOutputLen is the native output size of SHA-512.
	HashOutputLen = sha512.Size
	// HalfSaltLen is the size of each contributor's share of the salt.
	HalfSaltLen = HashOutputLen / 2
)

// Iteration counts fixed by protocol version 1.
const (
	EmailClientIterations    = 175_000
	PasswordClientIterations = 250_000
	ServerIterations         = 500_000
)

var (
	ErrInvalidSalt       = errors.New("hashchain: invalid salt length")
	ErrInvalidIterations = errors.New("hashchain: iterations must be positive")
	ErrRandom            = errors.New("hashchain: random source failed")
)

// Policy groups the iteration counts of both phases.
type Policy struct {
	EmailClientIterations    int
	PasswordClientIterations int
	ServerIterations         int
}

// DefaultPolicy returns the iteration counts of protocol version 1.
func DefaultPolicy() Policy {
	return Policy{
		EmailClientIterations:    EmailClientIterations,
		PasswordClientIterations: PasswordClientIterations,
		ServerIterations:         ServerIterations,
	}
}

// Record is one hashing round: the hash and the full salt that produced it.
type Record struct {
	Hash []byte
	Salt []byte
}

// ClientRecord is the result of the client phase. Only Hash and ClientSalt
// leave the client.
type ClientRecord struct {
	Record
	ClientSalt []byte
}

// NewHalfSalt returns HalfSaltLen random bytes.
func NewHalfSalt() ([]byte, error) {
	return randomBytes(HalfSaltLen)
}

// JoinSalt concatenates the two halves, server half first.
func JoinSalt(serverHalf, clientHalf []byte) ([]byte, error) {
	if len(serverHalf) != HalfSaltLen || len(clientHalf) != HalfSaltLen {
		return nil, fmt.Errorf("%w: server %d, client %d", ErrInvalidSalt, len(serverHalf), len(clientHalf))
	}
	salt := make([]byte, 0, HashOutputLen)
	salt = append(salt, serverHalf...)
	return append(salt, clientHalf...), nil
}

// Hash derives HashOutputLen bytes from secret and salt with PBKDF2-HMAC-SHA512.
func Hash(secret, salt []byte, iterations int) ([]byte, error) {
	if iterations <= 0 {
		return nil, ErrInvalidIterations
	}
	return pbkdf2.Key(secret, salt, iterations, HashOutputLen, sha512.New), nil
}

// ClientHash runs the client phase. Every call draws a new client half, so
// two calls with the same secret and server half give different results.
func ClientHash(secret, serverHalf []byte, iterations int) (ClientRecord, error) {
	clientHalf, err := NewHalfSalt()
	if err != nil {
		return ClientRecord{}, err
	}
	salt, err := JoinSalt(serverHalf, clientHalf)
	if err != nil {
		return ClientRecord{}, err
	}
	h, err := Hash(secret, salt, iterations)
	if err != nil {
		return ClientRecord{}, err
	}
	return ClientRecord{Record: Record{Hash: h, Salt: salt}, ClientSalt: clientHalf}, nil
}

// ServerHash runs the server phase over a client hash, with a fresh
// full-length server salt.
func ServerHash(clientHash []byte, iterations int) (Record, error) {
	salt, err := randomBytes(HashOutputLen)
	if err != nil {
		return Record{}, err
	}
	h, err := Hash(clientHash, salt, iterations)
	if err != nil {
		return Record{}, err
	}
	return Record{Hash: h, Salt: salt}, nil
}
