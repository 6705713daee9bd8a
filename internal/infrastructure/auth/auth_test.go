package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTService_GenerateAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 30)

	token, exp, err := svc.Generate("owner@kesher.co.il")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@kesher.co.il", claims.Email)
	assert.Equal(t, "kesher", claims.Issuer)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService("test-secret", 30)

	other, _, err := NewJWTService("another-secret", 30).Generate("owner@kesher.co.il")
	require.NoError(t, err)
	_, err = svc.Verify(other)
	assert.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"email": "x", "iss": "kesher"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	assert.Error(t, err)

	_, err = svc.Verify("not-a-token")
	assert.Error(t, err)
}

func TestJWTService_EmptySecret(t *testing.T) {
	_, _, err := NewJWTService("", 30).Generate("owner@kesher.co.il")
	assert.Error(t, err)
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, h.Verify("correct horse", hash))
	assert.ErrorIs(t, h.Verify("wrong horse", hash), ErrInvalidPassword)
	assert.Error(t, h.Verify("correct horse", "not-a-hash"))

	_, err = h.Hash("short")
	assert.Error(t, err)
}
