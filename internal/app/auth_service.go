package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"assessment-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthService admits allow-listed candidates and owns candidate record creation.
type AuthService struct {
	allowed    AllowListRepository
	candidates CandidateRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthService(allowed AllowListRepository, candidates CandidateRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{allowed: allowed, candidates: candidates, logger: logger, now: time.Now}
}

// SignIn checks the allow-list and returns the candidate record, creating it
// with hasStarted=false on the first successful sign-in.
func (s *AuthService) SignIn(ctx context.Context, email, phone string) (domain.Candidate, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return domain.Candidate{}, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}

	entry, err := s.allowed.Lookup(ctx, email)
	if err != nil {
		return domain.Candidate{}, err
	}
	if entry.Phone != strings.TrimSpace(phone) {
		return domain.Candidate{}, domain.ErrNotAllowed
	}

	existing, err := s.candidates.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrCandidateNotFound) {
		return domain.Candidate{}, err
	}

	now := s.now()
	created, err := s.candidates.Create(ctx, domain.Candidate{
		ID:        uuid.NewString(),
		Name:      entry.Name,
		Email:     email,
		Phone:     entry.Phone,
		Responses: []domain.Response{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, domain.ErrCandidateExists) {
		// Lost a race with a parallel sign-in for the same email.
		return s.candidates.GetByEmail(ctx, email)
	}
	if err != nil {
		return domain.Candidate{}, err
	}
	s.logger.Info("candidate registered", zap.String("candidate_id", created.ID), zap.String("email", email))
	return created, nil
}

// Profile resolves a principal to its record.
func (s *AuthService) Profile(ctx context.Context, p domain.Principal) (domain.Candidate, error) {
	if p.CandidateID == "" || p.Email == "" {
		return domain.Candidate{}, domain.ErrUnauthenticated
	}
	c, err := s.candidates.Get(ctx, p.CandidateID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !strings.EqualFold(c.Email, p.Email) {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	return c, nil
}

// AllowListService manages the eligibility registry.
type AllowListService struct {
	allowed AllowListRepository
	now     func() time.Time
}

func NewAllowListService(allowed AllowListRepository) *AllowListService {
	return &AllowListService{allowed: allowed, now: time.Now}
}

func (s *AllowListService) List(ctx context.Context) ([]domain.AllowedCandidate, error) {
	return s.allowed.List(ctx)
}

// Add validates and stores an allow-list entry.
func (s *AllowListService) Add(ctx context.Context, entry domain.AllowedCandidate) (domain.AllowedCandidate, error) {
	entry.Email = NormalizeEmail(entry.Email)
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Phone = strings.TrimSpace(entry.Phone)
	if err := ValidateAllowed(entry); err != nil {
		return domain.AllowedCandidate{}, err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return s.allowed.Add(ctx, entry)
}

func (s *AllowListService) Remove(ctx context.Context, email string) error {
	return s.allowed.Remove(ctx, NormalizeEmail(email))
}

// ValidateAllowed checks an already-normalized allow-list entry.
func ValidateAllowed(entry domain.AllowedCandidate) error {
	if !emailPattern.MatchString(entry.Email) {
		return fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if n := len([]rune(entry.Name)); n < 2 || n > 50 {
		return fmt.Errorf("%w: name must be 2-50 characters", domain.ErrInvalidInput)
	}
	if !phonePattern.MatchString(entry.Phone) {
		return fmt.Errorf("%w: phone must be 10 digits", domain.ErrInvalidInput)
	}
	return nil
}
