package identity

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider remembers verified tokens for a short TTL. Tokens of an
// identity are forgotten as soon as it is deprovisioned or its claims change
// through this provider; other processes keep theirs until the TTL expires.
type CachedProvider struct {
	Provider
	tokens *cache.Cache
}

func NewCachedProvider(provider Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		Provider: provider,
		tokens:   cache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) VerifyToken(ctx context.Context, token string) (*VerifiedToken, error) {
	if cached, ok := p.tokens.Get(token); ok {
		return cached.(*VerifiedToken), nil
	}

	verified, err := p.Provider.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	p.tokens.SetDefault(token, verified)
	return verified, nil
}

func (p *CachedProvider) SetClaims(ctx context.Context, uid string, claims Claims) error {
	err := p.Provider.SetClaims(ctx, uid, claims)
	p.forget(uid)
	return err
}

func (p *CachedProvider) DeprovisionIdentity(ctx context.Context, uid string) error {
	err := p.Provider.DeprovisionIdentity(ctx, uid)
	p.forget(uid)
	return err
}

func (p *CachedProvider) forget(uid string) {
	for token, item := range p.tokens.Items() {
		if verified, ok := item.Object.(*VerifiedToken); ok && verified.UID == uid {
			p.tokens.Delete(token)
		}
	}
}
