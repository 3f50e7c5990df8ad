package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"assessment-service/internal/domain"
	"go.uber.org/zap"
)

// DefaultGraceSeconds absorbs network and clock skew when checking reported time.
const DefaultGraceSeconds = 2

// SessionConfig scopes the engine to one active quiz.
type SessionConfig struct {
	QuizID        string
	QuestionCount int
	GraceSeconds  float64
}

// SessionService runs the candidate session lifecycle:
// not-started -> in-progress -> submitted.
type SessionService struct {
	candidates CandidateRepository
	quizzes    QuizRepository
	publisher  SubmissionPublisher
	logger     *zap.Logger
	cfg        SessionConfig
	intn       func(int) int
	now        func() time.Time
}

// SessionOption customizes a SessionService.
type SessionOption func(*SessionService)

// WithPublisher broadcasts committed submissions.
func WithPublisher(p SubmissionPublisher) SessionOption {
	return func(s *SessionService) { s.publisher = p }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithRandom replaces the draw's random source.
func WithRandom(intn func(int) int) SessionOption {
	return func(s *SessionService) { s.intn = intn }
}

func NewSessionService(candidates CandidateRepository, quizzes QuizRepository, logger *zap.Logger, cfg SessionConfig, opts ...SessionOption) *SessionService {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}
	if cfg.GraceSeconds <= 0 {
		cfg.GraceSeconds = DefaultGraceSeconds
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionService{
		candidates: candidates,
		quizzes:    quizzes,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a fresh session or resumes the one in progress. A fresh start
// writes the record exactly once; a resume never writes.
func (s *SessionService) Start(ctx context.Context, p domain.Principal) (domain.SessionView, error) {
	candidate, err := s.resolve(ctx, p)
	if err != nil {
		return domain.SessionView{}, err
	}

	switch candidate.State() {
	case domain.StateSubmitted:
		return domain.SessionView{}, domain.ErrAlreadySubmitted
	case domain.StateInProgress:
		return s.resume(candidate)
	}

	snapshot, err := s.drawSnapshot(ctx)
	if err != nil {
		return domain.SessionView{}, err
	}

	resumed := false
	updated, err := s.candidates.Update(ctx, candidate.ID, func(c *domain.Candidate) (bool, error) {
		switch c.State() {
		case domain.StateSubmitted:
			return false, domain.ErrAlreadySubmitted
		case domain.StateInProgress:
			// A concurrent start won; hand back its snapshot.
			resumed = true
			return false, nil
		}
		c.HasStarted = true
		c.Session = &snapshot
		c.Responses = []domain.Response{}
		c.TimeUsedSeconds = 0
		c.Score = 0
		return true, nil
	})
	if err != nil {
		return domain.SessionView{}, err
	}
	if resumed {
		return s.resume(updated)
	}

	s.logger.Info("quiz session started",
		zap.String("candidate_id", updated.ID),
		zap.Int("questions", len(snapshot.Questions)),
		zap.Int("duration_seconds", snapshot.DurationSeconds),
	)
	return domain.NewSessionView(snapshot, nil, 0, false), nil
}

func (s *SessionService) resume(c domain.Candidate) (domain.SessionView, error) {
	if c.Session == nil || len(c.Session.Questions) == 0 {
		s.logger.Error("stored quiz session has no questions", zap.String("candidate_id", c.ID))
		return domain.SessionView{}, domain.ErrCorruptSession
	}
	s.logger.Info("quiz session resumed", zap.String("candidate_id", c.ID))
	return domain.NewSessionView(*c.Session, c.Responses, c.TimeUsedSeconds, true), nil
}

func (s *SessionService) drawSnapshot(ctx context.Context) (domain.Snapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, s.cfg.QuizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.Snapshot{}, domain.ErrQuizNotConfigured
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load quiz: %w", err)
	}
	if quiz.DurationMinutes <= 0 {
		return domain.Snapshot{}, domain.ErrQuizNotConfigured
	}
	if len(quiz.Questions) == 0 {
		return domain.Snapshot{}, domain.ErrNoQuestionsAvailable
	}

	return domain.Snapshot{
		Title:           quiz.Title,
		Description:     quiz.Description,
		DurationSeconds: quiz.DurationMinutes * 60,
		Questions:       Draw(quiz.Questions, s.cfg.QuestionCount, s.intn),
	}, nil
}

// Submit scores the answers against the candidate's snapshot and finalizes the
// session in one write. Preconditions are checked in order and fail before any
// mutation.
func (s *SessionService) Submit(ctx context.Context, p domain.Principal, answers []domain.AnswerSubmission, timeUsedSeconds float64) (domain.SubmissionResult, error) {
	candidate, err := s.resolve(ctx, p)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if err := validateSubmission(answers, timeUsedSeconds); err != nil {
		return domain.SubmissionResult{}, err
	}

	responses := normalizeResponses(answers)
	var result domain.SubmissionResult

	updated, err := s.candidates.Update(ctx, candidate.ID, func(c *domain.Candidate) (bool, error) {
		if c.Session == nil || len(c.Session.Questions) == 0 {
			return false, domain.ErrNoSessionAssigned
		}
		if !c.HasStarted {
			return false, domain.ErrNotStarted
		}
		if c.HasSubmitted {
			return false, domain.ErrAlreadySubmitted
		}
		if timeUsedSeconds > float64(c.Session.DurationSeconds)+s.cfg.GraceSeconds {
			return false, domain.ErrTimeExceeded
		}

		submittedAt := s.now()
		c.Responses = responses
		c.Score = Score(*c.Session, responses)
		c.HasSubmitted = true
		c.TimeUsedSeconds = timeUsedSeconds
		c.SubmittedAt = &submittedAt

		result = domain.SubmissionResult{
			TotalQuestions:  len(c.Session.Questions),
			Attempted:       countAttempted(responses),
			TimeUsedSeconds: timeUsedSeconds,
		}
		return true, nil
	})
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	s.logger.Info("quiz submitted",
		zap.String("candidate_id", updated.ID),
		zap.Int("score", updated.Score),
		zap.Int("attempted", result.Attempted),
		zap.Float64("time_used_seconds", timeUsedSeconds),
	)
	if s.publisher != nil {
		s.publisher.Publish(domain.SubmissionEvent{
			CandidateID:     updated.ID,
			Name:            updated.Name,
			Email:           updated.Email,
			Score:           updated.Score,
			TotalQuestions:  result.TotalQuestions,
			Attempted:       result.Attempted,
			TimeUsedSeconds: timeUsedSeconds,
			SubmittedAt:     *updated.SubmittedAt,
		})
	}
	return result, nil
}

// resolve maps the principal to its candidate record; both id and email must match.
func (s *SessionService) resolve(ctx context.Context, p domain.Principal) (domain.Candidate, error) {
	if p.CandidateID == "" || p.Email == "" {
		return domain.Candidate{}, domain.ErrUnauthenticated
	}
	c, err := s.candidates.Get(ctx, p.CandidateID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !strings.EqualFold(c.Email, strings.TrimSpace(p.Email)) {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	return c, nil
}

func validateSubmission(answers []domain.AnswerSubmission, timeUsedSeconds float64) error {
	if len(answers) == 0 {
		return fmt.Errorf("%w: responses must not be empty", domain.ErrInvalidInput)
	}
	for i, a := range answers {
		if strings.TrimSpace(a.QuestionID) == "" {
			return fmt.Errorf("%w: response %d has no questionId", domain.ErrInvalidInput, i)
		}
		if a.SelectedOption != nil && *a.SelectedOption < 0 {
			return fmt.Errorf("%w: response %d has a negative selectedOption", domain.ErrInvalidInput, i)
		}
	}
	if math.IsNaN(timeUsedSeconds) || math.IsInf(timeUsedSeconds, 0) || timeUsedSeconds < 0 {
		return fmt.Errorf("%w: timeUsed must be a non-negative number", domain.ErrInvalidInput)
	}
	return nil
}
