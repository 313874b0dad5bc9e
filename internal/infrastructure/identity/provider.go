package identity

import (
	"context"
	"errors"

	"hospicloud/internal/domain/entity"
)

var (
	ErrEmailExists        = errors.New("identity with this email already exists")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims is the role metadata attached to an identity and carried by every
// token it signs in with.
type Claims struct {
	UserID     uint
	Role       entity.Role
	HospitalID *uint
}

type Token struct {
	AccessToken string
	ExpiresIn   int64
}

// VerifiedToken is a token that passed signature, expiry and revocation checks.
type VerifiedToken struct {
	UID     string
	TokenID string
	Claims  Claims
}

// Provider issues credentials and tokens for users stored in the local database.
type Provider interface {
	ProvisionIdentity(ctx context.Context, email, password, displayName string) (string, error)
	SetClaims(ctx context.Context, uid string, claims Claims) error
	DeprovisionIdentity(ctx context.Context, uid string) error
	SignIn(ctx context.Context, email, password string) (*Token, error)
	VerifyToken(ctx context.Context, token string) (*VerifiedToken, error)
}
