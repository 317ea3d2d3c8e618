package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndVerify(t *testing.T) {
	m := NewManager("test-secret", 30*time.Minute)

	signed, err := m.CreateAccessToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	subject, err := m.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	signed, err := m.CreateAccessToken("alice")
	require.NoError(t, err)

	_, err = m.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewManager("secret-one", 30*time.Minute)
	verifier := NewManager("secret-two", 30*time.Minute)

	signed, err := issuer.CreateAccessToken("alice")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	m := NewManager("test-secret", 30*time.Minute)

	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := m.VerifyToken(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	m := NewManager("test-secret", 30*time.Minute)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMissingSubject(t *testing.T) {
	m := NewManager("test-secret", 30*time.Minute)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := noSub.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTTL(t *testing.T) {
	m := NewManager("test-secret", 45*time.Minute)
	assert.Equal(t, 45*time.Minute, m.TTL())
}
