package app

import (
	"context"
	"time"

	"assessment-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// MutateFunc edits a candidate record under the store's per-record lock.
// Returning false leaves the record untouched; returning an error aborts
// without writing.
type MutateFunc func(c *domain.Candidate) (bool, error)

// CandidateRepository abstracts the candidate record store (in-memory, Postgres).
// Update must serialize concurrent callers for the same id so that every
// MutateFunc observes the last committed state.
type CandidateRepository interface {
	Create(ctx context.Context, c domain.Candidate) (domain.Candidate, error)
	Get(ctx context.Context, id string) (domain.Candidate, error)
	GetByEmail(ctx context.Context, email string) (domain.Candidate, error)
	Update(ctx context.Context, id string, fn MutateFunc) (domain.Candidate, error)
	List(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int, error)
	Stats(ctx context.Context) (domain.StateStats, error)
	Delete(ctx context.Context, id string) error
}

// AllowListRepository is the eligibility registry keyed by lowercased email.
type AllowListRepository interface {
	Lookup(ctx context.Context, email string) (domain.AllowedCandidate, error)
	List(ctx context.Context) ([]domain.AllowedCandidate, error)
	Add(ctx context.Context, entry domain.AllowedCandidate) (domain.AllowedCandidate, error)
	Remove(ctx context.Context, email string) error
}

// SubmissionPublisher receives an event for every committed submission.
type SubmissionPublisher interface {
	Publish(event domain.SubmissionEvent)
}

// RateDecision is the outcome of one rate limiter check.
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimiter counts hits per key within a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateDecision, error)
}
