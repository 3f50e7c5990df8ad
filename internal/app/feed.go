package app

import (
	"sync"

	"assessment-service/internal/domain"
)

// ResultsFeed fans submission events out to live subscribers (admin dashboards).
type ResultsFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.SubmissionEvent]struct{}
}

func NewResultsFeed() *ResultsFeed {
	return &ResultsFeed{subscribers: make(map[chan domain.SubmissionEvent]struct{})}
}

// Subscribe returns a channel that receives submission events.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultsFeed) Subscribe() (<-chan domain.SubmissionEvent, func()) {
	ch := make(chan domain.SubmissionEvent, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish never blocks: a full subscriber loses its oldest pending event.
func (f *ResultsFeed) Publish(event domain.SubmissionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// Subscribers reports how many listeners are attached.
func (f *ResultsFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
