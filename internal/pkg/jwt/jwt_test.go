package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("u-1", "jane@example.com", "employee")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims["user_id"])
	assert.Equal(t, "access", claims["type"])
	assert.Equal(t, "employee", claims["role"])
}

func TestJWTService_Revoke(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	token, _, err := svc.GenerateAccessToken("u-1", "jane@example.com", "employee")
	require.NoError(t, err)

	assert.False(t, svc.IsTokenRevoked(token))
	svc.RevokeToken(token)
	assert.True(t, svc.IsTokenRevoked(token))
}

func TestJWTService_SSEToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, expiresIn, err := svc.GenerateSSEToken("u-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	// an access token is not accepted on the SSE endpoint
	access, _, err := svc.GenerateAccessToken("u-1", "jane@example.com", "employee")
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	// nor is a token signed by another process
	other := NewJWTService("another-secret", time.Hour)
	_, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestParseUnverified(t *testing.T) {
	// a token from some other signer: we only read it
	issuer := jwtauth.New("HS256", []byte("backend-secret"), nil)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	_, token, err := issuer.Encode(map[string]interface{}{
		"user_name":   "jane@example.com",
		"authorities": []string{"ROLE_ADMIN"},
		"exp":         exp.Unix(),
	})
	require.NoError(t, err)

	claims, err := ParseUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestParseUnverified_ExpiredStillParses(t *testing.T) {
	issuer := jwtauth.New("HS256", []byte("backend-secret"), nil)
	_, token, err := issuer.Encode(map[string]interface{}{
		"sub":   "42",
		"email": "jane@example.com",
		"role":  "employee",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	claims, err := ParseUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "employee", claims.Role)
	assert.True(t, claims.ExpiresAt.Before(time.Now()))
}

func TestParseUnverified_Garbage(t *testing.T) {
	_, err := ParseUnverified("not-a-jwt")
	assert.Error(t, err)
}

func TestNewRandomSecret(t *testing.T) {
	a, err := NewRandomSecret()
	require.NoError(t, err)
	b, err := NewRandomSecret()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
