package memory

import (
	"context"
	"sort"
	"sync"

	"assessment-service/internal/domain"
)

// AllowList is an in-memory eligibility registry.
type AllowList struct {
	mu      sync.RWMutex
	entries map[string]domain.AllowedCandidate
}

func NewAllowList(entries ...domain.AllowedCandidate) *AllowList {
	l := &AllowList{entries: make(map[string]domain.AllowedCandidate, len(entries))}
	for _, e := range entries {
		l.entries[e.Email] = e
	}
	return l
}

func (l *AllowList) Lookup(_ context.Context, email string) (domain.AllowedCandidate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[email]
	if !ok {
		return domain.AllowedCandidate{}, domain.ErrNotAllowed
	}
	return e, nil
}

func (l *AllowList) List(_ context.Context) ([]domain.AllowedCandidate, error) {
	l.mu.RLock()
	out := make([]domain.AllowedCandidate, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (l *AllowList) Add(_ context.Context, entry domain.AllowedCandidate) (domain.AllowedCandidate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[entry.Email]; ok {
		return domain.AllowedCandidate{}, domain.ErrAllowedExists
	}
	l.entries[entry.Email] = entry
	return entry, nil
}

func (l *AllowList) Remove(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[email]; !ok {
		return domain.ErrNotAllowed
	}
	delete(l.entries, email)
	return nil
}
