package identity

import (
	"context"
	"io"
	"testing"
	"time"

	"hospicloud/config"
	"hospicloud/internal/domain/entity"
	"hospicloud/pkg/jwt"
	"hospicloud/pkg/password"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) (Provider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test", Issuer: "hospicloud", AccessExpiry: time.Hour})
	return NewRedisProvider(client, jwtService, password.NewBcryptHasher(4), log), mr
}

func TestProvisionSignInAndVerify(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	uid, err := p.ProvisionIdentity(ctx, "ana@example.com", "s3cret12", "Ana Perez")
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	hospitalID := uint(7)
	require.NoError(t, p.SetClaims(ctx, uid, Claims{UserID: 3, Role: entity.RoleAdmin, HospitalID: &hospitalID}))

	token, err := p.SignIn(ctx, "ana@example.com", "s3cret12")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	verified, err := p.VerifyToken(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uid, verified.UID)
	assert.Equal(t, uint(3), verified.Claims.UserID)
	assert.Equal(t, entity.RoleAdmin, verified.Claims.Role)
	require.NotNil(t, verified.Claims.HospitalID)
	assert.Equal(t, uint(7), *verified.Claims.HospitalID)
}

func TestProvisionRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	_, err := p.ProvisionIdentity(ctx, "dup@example.com", "abc12345", "Dup")
	require.NoError(t, err)

	_, err = p.ProvisionIdentity(ctx, "dup@example.com", "abc12345", "Dup")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignInWithoutClaimsFails(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	_, err := p.ProvisionIdentity(ctx, "half@example.com", "abc12345", "Half")
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "half@example.com", "abc12345")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	uid, err := p.ProvisionIdentity(ctx, "pat@example.com", "right123", "Pat")
	require.NoError(t, err)
	require.NoError(t, p.SetClaims(ctx, uid, Claims{UserID: 1, Role: entity.RolePatient}))

	_, err = p.SignIn(ctx, "pat@example.com", "wrong123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "right123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeprovisionRevokesTokens(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t)

	uid, err := p.ProvisionIdentity(ctx, "gone@example.com", "abc12345", "Gone")
	require.NoError(t, err)
	require.NoError(t, p.SetClaims(ctx, uid, Claims{UserID: 9, Role: entity.RolePatient}))

	token, err := p.SignIn(ctx, "gone@example.com", "abc12345")
	require.NoError(t, err)

	require.NoError(t, p.DeprovisionIdentity(ctx, uid))

	_, err = p.VerifyToken(ctx, token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, mr.Exists("identity:email:gone@example.com"))

	// The email can be provisioned again.
	_, err = p.ProvisionIdentity(ctx, "gone@example.com", "abc12345", "Gone")
	assert.NoError(t, err)
}

func TestSetClaimsUnknownIdentity(t *testing.T) {
	p, _ := newTestProvider(t)
	err := p.SetClaims(context.Background(), "missing", Claims{UserID: 1, Role: entity.RolePatient})
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}
