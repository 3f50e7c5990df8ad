package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
)

// CandidateStore is an in-memory implementation of app.CandidateRepository.
// Update runs under the store lock, so read-modify-write cycles are serialized.
type CandidateStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	byID    map[string]domain.Candidate
	byEmail map[string]string
}

func NewCandidateStore() *CandidateStore {
	return &CandidateStore{
		clock:   time.Now,
		byID:    make(map[string]domain.Candidate),
		byEmail: make(map[string]string),
	}
}

func (s *CandidateStore) Create(_ context.Context, c domain.Candidate) (domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(c.Email)
	if _, ok := s.byEmail[email]; ok {
		return domain.Candidate{}, domain.ErrCandidateExists
	}
	if _, ok := s.byID[c.ID]; ok {
		return domain.Candidate{}, domain.ErrCandidateExists
	}
	now := s.clock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Responses == nil {
		c.Responses = []domain.Response{}
	}
	c = cloneCandidate(c)
	s.byID[c.ID] = c
	s.byEmail[email] = c.ID
	return cloneCandidate(c), nil
}

func (s *CandidateStore) Get(_ context.Context, id string) (domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	return cloneCandidate(c), nil
}

func (s *CandidateStore) GetByEmail(ctx context.Context, email string) (domain.Candidate, error) {
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	return s.Get(ctx, id)
}

func (s *CandidateStore) Update(_ context.Context, id string, fn app.MutateFunc) (domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[id]
	if !ok {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}

	working := cloneCandidate(current)
	changed, err := fn(&working)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !changed {
		return cloneCandidate(current), nil
	}
	working.ID = current.ID
	working.Email = current.Email
	working.UpdatedAt = s.clock()
	s.byID[id] = cloneCandidate(working)
	return working, nil
}

func (s *CandidateStore) List(_ context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int, error) {
	s.mu.RLock()
	matched := make([]domain.Candidate, 0, len(s.byID))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, c := range s.byID {
		if filter.State != "" && c.State() != filter.State {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		matched = append(matched, cloneCandidate(c))
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		less := lessBy(filter.SortBy, matched[i], matched[j])
		if filter.Asc {
			return less
		}
		return lessBy(filter.SortBy, matched[j], matched[i])
	})

	total := len(matched)
	if filter.Offset >= total {
		return []domain.Candidate{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func lessBy(field string, a, b domain.Candidate) bool {
	switch field {
	case domain.SortScore:
		if a.Score != b.Score {
			return a.Score < b.Score
		}
	case domain.SortTimeUsed:
		if a.TimeUsedSeconds != b.TimeUsedSeconds {
			return a.TimeUsedSeconds < b.TimeUsedSeconds
		}
	case domain.SortName:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (s *CandidateStore) Stats(_ context.Context) (domain.StateStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.StateStats{Total: len(s.byID)}
	for _, c := range s.byID {
		switch c.State() {
		case domain.StateSubmitted:
			stats.Submitted++
		case domain.StateInProgress:
			stats.InProgress++
		default:
			stats.NotStarted++
		}
	}
	return stats, nil
}

func (s *CandidateStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return domain.ErrCandidateNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, strings.ToLower(c.Email))
	return nil
}

// cloneCandidate deep-copies the slices and pointers callers could mutate.
func cloneCandidate(c domain.Candidate) domain.Candidate {
	if c.Responses != nil {
		responses := make([]domain.Response, len(c.Responses))
		copy(responses, c.Responses)
		c.Responses = responses
	}
	if c.Session != nil {
		session := *c.Session
		session.Questions = make([]domain.Question, len(c.Session.Questions))
		for i, q := range c.Session.Questions {
			q.Options = append([]string(nil), q.Options...)
			session.Questions[i] = q
		}
		c.Session = &session
	}
	if c.SubmittedAt != nil {
		at := *c.SubmittedAt
		c.SubmittedAt = &at
	}
	return c
}
