package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"hospicloud/internal/domain/entity"
	"hospicloud/pkg/jwt"
	"hospicloud/pkg/password"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	userKeyPrefix  = "identity:user:"
	emailKeyPrefix = "identity:email:"
)

type redisProvider struct {
	client     *redis.Client
	jwtService *jwt.JWTService
	hasher     password.Hasher
	log        *logrus.Logger
}

// NewRedisProvider stores identities as redis hashes and keeps an allow-list
// of issued access tokens so they can be revoked.
func NewRedisProvider(client *redis.Client, jwtService *jwt.JWTService, hasher password.Hasher, log *logrus.Logger) Provider {
	return &redisProvider{
		client:     client,
		jwtService: jwtService,
		hasher:     hasher,
		log:        log,
	}
}

func userKey(uid string) string {
	return userKeyPrefix + uid
}

func emailKey(email string) string {
	return emailKeyPrefix + email
}

func accessTokenKey(uid, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", uid, tokenID)
}

func (p *redisProvider) ProvisionIdentity(ctx context.Context, email, plain, displayName string) (string, error) {
	uid := uuid.NewString()

	ok, err := p.client.SetNX(ctx, emailKey(email), uid, 0).Result()
	if err != nil {
		p.log.Warnf("Failed to reserve identity email: %+v", err)
		return "", err
	}
	if !ok {
		return "", ErrEmailExists
	}

	hashed, err := p.hasher.Hash(plain)
	if err != nil {
		p.client.Del(ctx, emailKey(email))
		return "", err
	}

	err = p.client.HSet(ctx, userKey(uid), map[string]interface{}{
		"email":         email,
		"password_hash": hashed,
		"display_name":  displayName,
	}).Err()
	if err != nil {
		p.log.Warnf("Failed to store identity: %+v", err)
		p.client.Del(ctx, emailKey(email))
		return "", err
	}

	return uid, nil
}

func (p *redisProvider) SetClaims(ctx context.Context, uid string, claims Claims) error {
	exists, err := p.client.Exists(ctx, userKey(uid)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrIdentityNotFound
	}

	hospitalID := ""
	if claims.HospitalID != nil {
		hospitalID = strconv.FormatUint(uint64(*claims.HospitalID), 10)
	}

	return p.client.HSet(ctx, userKey(uid), map[string]interface{}{
		"user_id":     strconv.FormatUint(uint64(claims.UserID), 10),
		"role":        string(claims.Role),
		"hospital_id": hospitalID,
	}).Err()
}

// DeprovisionIdentity removes the identity and revokes every token it holds.
// Removing an unknown identity is not an error.
func (p *redisProvider) DeprovisionIdentity(ctx context.Context, uid string) error {
	email, err := p.client.HGet(ctx, userKey(uid), "email").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := []string{userKey(uid)}
	if email != "" {
		keys = append(keys, emailKey(email))
	}

	iter := p.client.Scan(ctx, 0, accessTokenKey(uid, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		p.log.Warnf("Failed to scan access tokens: %+v", err)
		return err
	}

	return p.client.Del(ctx, keys...).Err()
}

func (p *redisProvider) SignIn(ctx context.Context, email, plain string) (*Token, error) {
	uid, err := p.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	fields, err := p.client.HGetAll(ctx, userKey(uid)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrInvalidCredentials
	}

	if err := p.hasher.Compare(fields["password_hash"], plain); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims, err := parseClaims(fields)
	if err != nil {
		// Identity exists but its claims were never attached.
		return nil, ErrInvalidCredentials
	}

	accessToken, tokenID, err := p.jwtService.GenerateAccessToken(uid, claims.UserID, string(claims.Role), claims.HospitalID)
	if err != nil {
		p.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	if err := p.client.Set(ctx, accessTokenKey(uid, tokenID), "valid", p.jwtService.GetAccessExpiry()).Err(); err != nil {
		p.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	return &Token{
		AccessToken: accessToken,
		ExpiresIn:   int64(p.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (p *redisProvider) VerifyToken(ctx context.Context, token string) (*VerifiedToken, error) {
	claims, err := p.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exists, err := p.client.Exists(ctx, accessTokenKey(claims.Subject, claims.TokenID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrInvalidToken
	}

	return &VerifiedToken{
		UID:     claims.Subject,
		TokenID: claims.TokenID,
		Claims: Claims{
			UserID:     claims.UserID,
			Role:       entity.Role(claims.Role),
			HospitalID: claims.HospitalID,
		},
	}, nil
}

func parseClaims(fields map[string]string) (Claims, error) {
	userID, err := strconv.ParseUint(fields["user_id"], 10, 64)
	if err != nil {
		return Claims{}, err
	}
	role := entity.Role(fields["role"])
	if !role.IsValid() {
		return Claims{}, fmt.Errorf("invalid role %q", fields["role"])
	}

	claims := Claims{UserID: uint(userID), Role: role}
	if raw := fields["hospital_id"]; raw != "" {
		hospitalID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Claims{}, err
		}
		id := uint(hospitalID)
		claims.HospitalID = &id
	}
	return claims, nil
}
