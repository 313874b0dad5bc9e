package jwt

import (
	"testing"
	"time"

	"hospicloud/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(secret string, expiry time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: secret, Issuer: "hospicloud", AccessExpiry: expiry})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService("secret", time.Minute)
	hospitalID := uint(3)

	token, tokenID, err := svc.GenerateAccessToken("uid-1", 42, "admin", &hospitalID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.Subject)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.HospitalID)
	assert.Equal(t, uint(3), *claims.HospitalID)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	token, _, err := newService("one", time.Minute).GenerateAccessToken("uid", 1, "patient", nil)
	require.NoError(t, err)

	_, err = newService("two", time.Minute).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := newService("secret", -time.Minute)
	token, _, err := svc.GenerateAccessToken("uid", 1, "patient", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
