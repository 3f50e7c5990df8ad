package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/config"
	"assessment-service/internal/domain"
	"assessment-service/internal/identity"
	"assessment-service/internal/infra/memory"
	pgstore "assessment-service/internal/infra/postgres"
	infraredis "assessment-service/internal/infra/redis"
	transport "assessment-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type quizWriter interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
}

// backends holds the storage implementations chosen from config: Postgres for
// durable records when a URL is set, Redis for shared caches, tokens and rate
// limits when an address is set, process memory otherwise.
type backends struct {
	candidates app.CandidateRepository
	allowed    app.AllowListRepository
	quizzes    app.QuizRepository
	quizWriter quizWriter
	invalidate func(ctx context.Context, quizID string) error
	tokens     identity.TokenStore
	limiter    app.RateLimiter
	checks     map[string]transport.Checker
	closers    []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{checks: map[string]transport.Checker{}}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		b.closers = append(b.closers, func() { redisClient.Close() })
		b.checks["redis"] = transport.CheckFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg.Postgres.URL, logger); err != nil {
			b.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.checks["postgres"] = transport.CheckFunc(pool.Ping)
		logger.Info("connected to postgres")
	}

	var loader memory.QuizLoader
	if pool != nil {
		pgLoader := pgstore.NewQuizLoader(pool)
		loader, b.quizWriter = pgLoader, pgLoader
		b.candidates = pgstore.NewCandidateStore(pool)
		b.allowed = pgstore.NewAllowList(pool)
	} else {
		static := memory.NewStaticQuizLoader(nil)
		loader, b.quizWriter = static, static
		b.candidates = memory.NewCandidateStore()
		b.allowed = memory.NewAllowList()
		logger.Warn("postgres not configured; candidate records are kept in memory")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		repo := infraredis.NewQuizRepository(redisClient, loader, quizTTL)
		b.quizzes, b.invalidate = repo, repo.Invalidate
		b.tokens = infraredis.NewTokenStore(redisClient)
		b.limiter = infraredis.NewRateLimiter(redisClient)
	} else {
		repo := memory.NewQuizRepository(loader, quizTTL)
		b.quizzes = repo
		b.invalidate = func(_ context.Context, quizID string) error {
			repo.Invalidate(quizID)
			return nil
		}
		b.tokens = memory.NewTokenStore()
		b.limiter = memory.NewRateLimiter()
	}
	return b, nil
}

// saveQuiz validates, stores and evicts the cached copy of a quiz.
func (b *backends) saveQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := app.ValidateQuiz(quiz); err != nil {
		return err
	}
	if err := b.quizWriter.SaveQuiz(ctx, quiz); err != nil {
		return err
	}
	return b.invalidate(ctx, quiz.ID)
}

// registerAllowed adds configured allow-list entries, keeping existing ones.
func registerAllowed(ctx context.Context, svc *app.AllowListService, entries []config.AllowedEntry, logger *zap.Logger) error {
	for _, e := range entries {
		_, err := svc.Add(ctx, domain.AllowedCandidate{Email: e.Email, Name: e.Name, Phone: e.Phone})
		if errors.Is(err, domain.ErrAllowedExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("allow %s: %w", e.Email, err)
		}
		logger.Info("allow-list entry registered", zap.String("email", app.NormalizeEmail(e.Email)))
	}
	return nil
}

func buildIdentity(cfg config.Auth, tokens identity.TokenStore) (identity.Chain, error) {
	ttl := config.TTLDuration(cfg.TokenTTL, identity.DefaultTokenTTL)
	sessions := identity.NewSessionProvider(tokens, ttl)
	if cfg.JWTSecret == "" {
		return identity.Chain{sessions}, nil
	}
	jwtProvider, err := identity.NewJWTProvider(cfg.JWTSecret, ttl)
	if err != nil {
		return nil, err
	}
	if cfg.Issuer == config.IssuerSession {
		return identity.Chain{sessions, jwtProvider}, nil
	}
	return identity.Chain{jwtProvider, sessions}, nil
}
