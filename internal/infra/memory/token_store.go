package memory

import (
	"context"
	"sync"
	"time"

	"assessment-service/internal/domain"
)

// TokenStore keeps opaque session tokens in process memory.
type TokenStore struct {
	mu     sync.Mutex
	clock  func() time.Time
	tokens map[string]storedToken
}

type storedToken struct {
	principal domain.Principal
	expiresAt time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{clock: time.Now, tokens: make(map[string]storedToken)}
}

func (s *TokenStore) Save(_ context.Context, token string, p domain.Principal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = storedToken{principal: p, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *TokenStore) Lookup(_ context.Context, token string) (domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if !t.expiresAt.After(s.clock()) {
		delete(s.tokens, token)
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return t.principal, nil
}

func (s *TokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
