package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assessment-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches the cookie lifetime handed to browsers.
const DefaultTokenTTL = 7 * 24 * time.Hour

type claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTProvider signs HS256 tokens carrying the candidate id and email.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTProvider(secret string, ttl time.Duration) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("identity: jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTProvider{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (j *JWTProvider) Issue(_ context.Context, p domain.Principal) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:    p.CandidateID,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	})
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTProvider) Verify(_ context.Context, raw string) (domain.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !token.Valid {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if c.ID == "" || c.Email == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return domain.Principal{CandidateID: c.ID, Email: c.Email}, nil
}
