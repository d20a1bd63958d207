package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseClaims(t *testing.T, tok string, secret []byte, now time.Time) (*Claims, error) {
	t.Helper()
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return now }))
	return claims, err
}

func TestIssue_Claims(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := NewIssuer([]byte("super-secret"), time.Hour)
	iss.now = func() time.Time { return now }
	id := uuid.New()

	tok, err := iss.Issue(id)
	require.NoError(t, err)

	claims, err := parseClaims(t, tok, []byte("super-secret"), now)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.AccountID)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, now, claims.IssuedAt.Time.UTC())
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt.Time.UTC())
	assert.NotEmpty(t, claims.ID)
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("k"), time.Hour)
	id := uuid.New()

	a, err := iss.Issue(id)
	require.NoError(t, err)
	b, err := iss.Issue(id)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssue_ExpiresAfterValidity(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := NewIssuer([]byte("secret"), time.Minute)
	iss.now = func() time.Time { return now }

	tok, err := iss.Issue(uuid.New())
	require.NoError(t, err)

	_, err = parseClaims(t, tok, []byte("secret"), now.Add(2*time.Minute))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssue_SignedWithSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer([]byte("right-secret"), time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = parseClaims(t, tok, []byte("wrong-secret"), time.Now())
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
