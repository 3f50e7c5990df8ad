// Package identity issues and verifies the tokens that carry a candidate
// principal between requests.
package identity

import (
	"context"
	"errors"

	"assessment-service/internal/domain"
)

// Provider issues a token for a principal and resolves it back.
// Verify returns domain.ErrUnauthenticated for any token it does not accept.
type Provider interface {
	Issue(ctx context.Context, p domain.Principal) (string, error)
	Verify(ctx context.Context, token string) (domain.Principal, error)
}

// Revoker is implemented by providers whose tokens can be invalidated server-side.
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

// Chain verifies with each provider in turn and issues with the first one.
// It lets the JWT path and the legacy opaque session path coexist.
type Chain []Provider

func (c Chain) Issue(ctx context.Context, p domain.Principal) (string, error) {
	if len(c) == 0 {
		return "", errors.New("identity: no providers configured")
	}
	return c[0].Issue(ctx, p)
}

func (c Chain) Verify(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	for _, provider := range c {
		p, err := provider.Verify(ctx, token)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrUnauthenticated) {
			return domain.Principal{}, err
		}
	}
	return domain.Principal{}, domain.ErrUnauthenticated
}

// Revoke forwards to every provider that supports revocation.
func (c Chain) Revoke(ctx context.Context, token string) error {
	for _, provider := range c {
		if r, ok := provider.(Revoker); ok {
			if err := r.Revoke(ctx, token); err != nil {
				return err
			}
		}
	}
	return nil
}
