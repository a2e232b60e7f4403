package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(ttl time.Duration) *JWTService {
	cfg := DefaultJWTConfig("test-secret")
	if ttl != 0 {
		cfg.AccessTokenTTL = ttl
	}
	return NewJWTService(cfg)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(0)

	token, expiresAt, err := svc.GenerateAccessToken("u1", "vera@example.com", false)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	principal, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.UserID)
	assert.Equal(t, "vera@example.com", principal.Email)
	assert.False(t, principal.IsPlatformAdmin)
}

func TestAccessTokenCarriesPlatformAdminFlag(t *testing.T) {
	svc := newTestJWTService(0)

	token, _, err := svc.GenerateAccessToken("admin-1", "ops@example.com", true)
	require.NoError(t, err)

	principal, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, principal.IsPlatformAdmin)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := newTestJWTService(0).GenerateAccessToken("u1", "vera@example.com", false)
	require.NoError(t, err)

	other := NewJWTService(DefaultJWTConfig("different-secret"))
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestJWTService(-time.Minute)

	token, _, err := svc.GenerateAccessToken("u1", "vera@example.com", false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestJWTService(0)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
