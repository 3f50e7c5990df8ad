package identity

import (
	"context"
	"time"

	"assessment-service/internal/domain"
	"github.com/google/uuid"
)

// TokenStore keeps opaque session tokens (Redis in production, memory in tests).
type TokenStore interface {
	Save(ctx context.Context, token string, p domain.Principal, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (domain.Principal, error)
	Revoke(ctx context.Context, token string) error
}

// SessionProvider is the legacy opaque-token identity path.
type SessionProvider struct {
	store TokenStore
	ttl   time.Duration
}

func NewSessionProvider(store TokenStore, ttl time.Duration) *SessionProvider {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &SessionProvider{store: store, ttl: ttl}
}

func (s *SessionProvider) Issue(ctx context.Context, p domain.Principal) (string, error) {
	token := uuid.NewString()
	if err := s.store.Save(ctx, token, p, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *SessionProvider) Verify(ctx context.Context, token string) (domain.Principal, error) {
	if _, err := uuid.Parse(token); err != nil {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return s.store.Lookup(ctx, token)
}

func (s *SessionProvider) Revoke(ctx context.Context, token string) error {
	return s.store.Revoke(ctx, token)
}
