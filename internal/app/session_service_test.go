package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
	"assessment-service/internal/infra/memory"
)

// recordingStore counts committed writes.
type recordingStore struct {
	*memory.CandidateStore
	writes atomic.Int32
}

func (s *recordingStore) Update(ctx context.Context, id string, fn app.MutateFunc) (domain.Candidate, error) {
	return s.CandidateStore.Update(ctx, id, func(c *domain.Candidate) (bool, error) {
		changed, err := fn(c)
		if changed && err == nil {
			s.writes.Add(1)
		}
		return changed, err
	})
}

type fixture struct {
	store   *recordingStore
	loader  *memory.StaticQuizLoader
	quizzes *memory.QuizRepository
	service *app.SessionService
	p       domain.Principal
}

func newFixture(t *testing.T, quiz *domain.Quiz, opts ...app.SessionOption) *fixture {
	t.Helper()
	f := &fixture{store: &recordingStore{CandidateStore: memory.NewCandidateStore()}}
	quizzes := map[string]domain.Quiz{}
	if quiz != nil {
		quizzes[quiz.ID] = *quiz
	}
	f.loader = memory.NewStaticQuizLoader(quizzes)
	f.quizzes = memory.NewQuizRepository(f.loader, time.Minute)
	f.service = app.NewSessionService(f.store, f.quizzes, nil, app.SessionConfig{QuizID: "active"}, opts...)
	f.p = f.addCandidate(t, "ada@example.com")
	return f
}

func (f *fixture) addCandidate(t *testing.T, email string) domain.Principal {
	t.Helper()
	c, err := f.store.Create(context.Background(), domain.Candidate{ID: "id-" + email, Name: "Candidate", Email: email})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	return domain.Principal{CandidateID: c.ID, Email: c.Email}
}

func (f *fixture) record(t *testing.T) domain.Candidate {
	t.Helper()
	c, err := f.store.Get(context.Background(), f.p.CandidateID)
	if err != nil {
		t.Fatalf("get candidate: %v", err)
	}
	return c
}

func bankQuiz(size, minutes int) *domain.Quiz {
	q := &domain.Quiz{ID: "active", Title: "Screening", Description: "General screening", DurationMinutes: minutes}
	for i := 0; i < size; i++ {
		q.Questions = append(q.Questions, domain.Question{
			ID:           fmt.Sprintf("q%d", i+1),
			Text:         fmt.Sprintf("Question %d", i+1),
			Options:      []string{"a", "b", "c"},
			CorrectIndex: i % 3,
		})
	}
	return q
}

// exampleQuiz has one index-keyed, one text-keyed and one unanswerable question.
func exampleQuiz() *domain.Quiz {
	return &domain.Quiz{
		ID:              "active",
		Title:           "Screening",
		Description:     "General screening",
		DurationMinutes: 10,
		Questions: []domain.Question{
			{ID: "Q1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
			{ID: "Q2", Text: "Capital of France?", Options: []string{"Rome", "Madrid", "Paris"}, CorrectIndex: domain.NoCorrectIndex, CorrectText: "Paris"},
			{ID: "Q3", Text: "Unscored question", Options: []string{"x", "y"}, CorrectIndex: domain.NoCorrectIndex},
		},
	}
}

func answer(id string, option int) domain.AnswerSubmission {
	return domain.AnswerSubmission{QuestionID: id, SelectedOption: &option}
}

func TestStartDrawsSnapshotThenResumes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, bankQuiz(20, 30))

	view, err := f.service.Start(ctx, f.p)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Resumed || len(view.Questions) != app.DefaultQuestionCount || view.DurationSeconds != 1800 {
		t.Fatalf("unexpected fresh view: resumed=%v questions=%d duration=%d", view.Resumed, len(view.Questions), view.DurationSeconds)
	}
	seen := map[string]bool{}
	for _, q := range view.Questions {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in draw", q.ID)
		}
		seen[q.ID] = true
	}
	if got := f.store.writes.Load(); got != 1 {
		t.Fatalf("expected exactly one write on fresh start, got %d", got)
	}
	stored := f.record(t)
	if stored.State() != domain.StateInProgress || len(stored.Responses) != 0 || stored.TimeUsedSeconds != 0 {
		t.Fatalf("unexpected stored record: %+v", stored)
	}

	again, err := f.service.Start(ctx, f.p)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !again.Resumed {
		t.Fatalf("expected second start to resume")
	}
	for i := range view.Questions {
		if view.Questions[i].ID != again.Questions[i].ID {
			t.Fatalf("resume returned a different snapshot at %d", i)
		}
	}
	if got := f.store.writes.Load(); got != 1 {
		t.Fatalf("resume must not write, got %d writes", got)
	}
}

func TestStartTakesWholeBankWhenSmall(t *testing.T) {
	f := newFixture(t, exampleQuiz())
	view, err := f.service.Start(context.Background(), f.p)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(view.Questions) != 3 {
		t.Fatalf("expected all 3 questions, got %d", len(view.Questions))
	}
}

func TestStartWithEmptyBankDoesNotMutate(t *testing.T) {
	quiz := bankQuiz(0, 10)
	f := newFixture(t, quiz)

	if _, err := f.service.Start(context.Background(), f.p); !errors.Is(err, domain.ErrNoQuestionsAvailable) {
		t.Fatalf("expected no questions available, got %v", err)
	}
	if f.store.writes.Load() != 0 {
		t.Fatalf("expected no writes")
	}
	if c := f.record(t); c.HasStarted || c.Session != nil {
		t.Fatalf("record mutated: %+v", c)
	}
}

func TestStartWithoutQuizIsNotConfigured(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.service.Start(context.Background(), f.p); !errors.Is(err, domain.ErrQuizNotConfigured) {
		t.Fatalf("expected quiz not configured, got %v", err)
	}

	noDuration := bankQuiz(5, 0)
	f = newFixture(t, noDuration)
	if _, err := f.service.Start(context.Background(), f.p); !errors.Is(err, domain.ErrQuizNotConfigured) {
		t.Fatalf("expected quiz without duration to be not configured, got %v", err)
	}
}

func TestStartResolvesPrincipal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, exampleQuiz())

	if _, err := f.service.Start(ctx, domain.Principal{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := f.service.Start(ctx, domain.Principal{CandidateID: "missing", Email: "x@example.com"}); !errors.Is(err, domain.ErrCandidateNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
	if _, err := f.service.Start(ctx, domain.Principal{CandidateID: f.p.CandidateID, Email: "eve@example.com"}); !errors.Is(err, domain.ErrCandidateNotFound) {
		t.Fatalf("expected not found for mismatched email, got %v", err)
	}
	if _, err := f.service.Start(ctx, domain.Principal{CandidateID: f.p.CandidateID, Email: "ADA@example.com"}); err != nil {
		t.Fatalf("email match should ignore case: %v", err)
	}
}

func TestConcurrentStartsShareOneSnapshot(t *testing.T) {
	f := newFixture(t, bankQuiz(30, 10))

	const n = 10
	views := make([]domain.SessionView, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := f.service.Start(context.Background(), f.p)
			if err != nil {
				t.Errorf("start %d: %v", i, err)
			}
			views[i] = v
		}(i)
	}
	wg.Wait()

	if got := f.store.writes.Load(); got != 1 {
		t.Fatalf("expected one committed start, got %d", got)
	}
	for i := 1; i < n; i++ {
		for j := range views[0].Questions {
			if views[i].Questions[j].ID != views[0].Questions[j].ID {
				t.Fatalf("start %d saw a different snapshot", i)
			}
		}
	}
}

func TestSubmitScoresAgainstSnapshot(t *testing.T) {
	ctx := context.Background()
	quiz := exampleQuiz()
	f := newFixture(t, quiz)

	if _, err := f.service.Start(ctx, f.p); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Rewriting the live bank after start must not affect scoring.
	changed := *quiz
	changed.Questions = []domain.Question{
		{ID: "Q1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 0},
	}
	if err := f.loader.SaveQuiz(ctx, changed); err != nil {
		t.Fatalf("save quiz: %v", err)
	}
	f.quizzes.Invalidate("active")

	result, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{
		answer("Q1", 1),
		answer("Q2", 2),
		answer("Q3", 0),
	}, 100)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TotalQuestions != 3 || result.Attempted != 3 || result.TimeUsedSeconds != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
	stored := f.record(t)
	if stored.Score != 2 || stored.State() != domain.StateSubmitted || stored.SubmittedAt == nil {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
}

func TestSubmitStoresUnansweredAsMinusOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, exampleQuiz())
	f.service.Start(ctx, f.p)

	result, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{
		answer("Q1", 1),
		{QuestionID: " Q2 "},
	}, 10)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Attempted != 1 {
		t.Fatalf("expected one attempted answer, got %d", result.Attempted)
	}
	stored := f.record(t)
	want := []domain.Response{{QuestionID: "Q1", SelectedOption: "1"}, {QuestionID: "Q2", SelectedOption: domain.Unanswered}}
	if len(stored.Responses) != 2 || stored.Responses[0] != want[0] || stored.Responses[1] != want[1] {
		t.Fatalf("unexpected responses: %+v", stored.Responses)
	}
}

func TestSubmitTimeBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, bankQuiz(3, 1))
	f.service.Start(ctx, f.p)
	answers := []domain.AnswerSubmission{answer("q1", 0)}

	if _, err := f.service.Submit(ctx, f.p, answers, 63); !errors.Is(err, domain.ErrTimeExceeded) {
		t.Fatalf("expected time exceeded at duration+3, got %v", err)
	}
	if _, err := f.service.Submit(ctx, f.p, answers, -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative time, got %v", err)
	}
	if c := f.record(t); c.HasSubmitted {
		t.Fatalf("failed submits must not mutate the record")
	}
	if _, err := f.service.Submit(ctx, f.p, answers, 62); err != nil {
		t.Fatalf("expected success at duration+2, got %v", err)
	}
}

func TestSubmitIsOneShot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, exampleQuiz())
	f.service.Start(ctx, f.p)

	if _, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{answer("Q1", 1)}, 30); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{answer("Q1", 1), answer("Q2", 2)}, 40)
	if !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	if c := f.record(t); c.Score != 1 || c.TimeUsedSeconds != 30 {
		t.Fatalf("score must be immutable after submission: %+v", c)
	}
	if _, err := f.service.Start(ctx, f.p); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected start after submit to fail, got %v", err)
	}
}

func TestConcurrentSubmitsCommitOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, exampleQuiz())
	f.service.Start(ctx, f.p)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{answer("Q1", 1)}, 5)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrAlreadySubmitted):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 || conflicts.Load() != 19 {
		t.Fatalf("expected 1 success and 19 conflicts, got %d/%d", successes.Load(), conflicts.Load())
	}
	if got := f.store.writes.Load(); got != 2 {
		t.Fatalf("expected start + one submit to be written, got %d", got)
	}
}

func TestSubmitPreconditionOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, exampleQuiz())

	if _, err := f.service.Submit(ctx, domain.Principal{CandidateID: "nobody", Email: "x@example.com"}, nil, 1); !errors.Is(err, domain.ErrCandidateNotFound) {
		t.Fatalf("expected not found first, got %v", err)
	}
	invalid := [][]domain.AnswerSubmission{
		nil,
		{{QuestionID: ""}},
		{answer("Q1", -2)},
	}
	for i, answers := range invalid {
		if _, err := f.service.Submit(ctx, f.p, answers, 1); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input before session checks, got %v", i, err)
		}
	}
	if _, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{answer("Q1", 1)}, 1); !errors.Is(err, domain.ErrNoSessionAssigned) {
		t.Fatalf("expected no session assigned, got %v", err)
	}

	// A snapshot without the started flag is reported as not started.
	snapshot := &domain.Snapshot{DurationSeconds: 60, Questions: exampleQuiz().Questions}
	if _, err := f.store.CandidateStore.Update(ctx, f.p.CandidateID, func(c *domain.Candidate) (bool, error) {
		c.Session = snapshot
		return true, nil
	}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	if _, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{answer("Q1", 1)}, 1); !errors.Is(err, domain.ErrNotStarted) {
		t.Fatalf("expected not started, got %v", err)
	}
}

func TestResumeWithEmptySnapshotIsCorrupt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, exampleQuiz())
	if _, err := f.store.CandidateStore.Update(ctx, f.p.CandidateID, func(c *domain.Candidate) (bool, error) {
		c.HasStarted = true
		c.Session = &domain.Snapshot{DurationSeconds: 60}
		return true, nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := f.service.Start(ctx, f.p)
	if !errors.Is(err, domain.ErrCorruptSession) {
		t.Fatalf("expected corrupt session, got %v", err)
	}
	if !domain.IsServerFault(err) {
		t.Fatalf("corrupt session must be a server fault")
	}
}

func TestSubmitPublishesEvent(t *testing.T) {
	ctx := context.Background()
	feed := app.NewResultsFeed()
	events, cancel := feed.Subscribe()
	defer cancel()

	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, exampleQuiz(), app.WithPublisher(feed), app.WithClock(func() time.Time { return at }))
	f.service.Start(ctx, f.p)
	if _, err := f.service.Submit(ctx, f.p, []domain.AnswerSubmission{answer("Q1", 1), {QuestionID: "Q2"}}, 12.5); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case ev := <-events:
		if ev.CandidateID != f.p.CandidateID || ev.Score != 1 || ev.Attempted != 1 || ev.TotalQuestions != 3 || !ev.SubmittedAt.Equal(at) {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected submission event")
	}
}

func TestStartUsesInjectedRandom(t *testing.T) {
	// Always picking j=0 moves the first bank question to the end.
	f := newFixture(t, bankQuiz(4, 10), app.WithRandom(func(int) int { return 0 }))
	view, err := f.service.Start(context.Background(), f.p)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	want := []string{"q2", "q3", "q4", "q1"}
	for i, q := range view.Questions {
		if q.ID != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], q.ID)
		}
	}
}
