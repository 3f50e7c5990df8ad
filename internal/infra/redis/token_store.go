package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"assessment-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TokenStore backs the opaque session-token identity path. Each token maps to
// a principal under session:token:{token} and expires with its TTL.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Save(ctx context.Context, token string, p domain.Principal, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}
	return s.client.Set(ctx, s.key(token), raw, ttl).Err()
}

func (s *TokenStore) Lookup(ctx context.Context, token string) (domain.Principal, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("lookup token: %w", err)
	}
	var p domain.Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *TokenStore) key(token string) string {
	return "session:token:" + token
}
