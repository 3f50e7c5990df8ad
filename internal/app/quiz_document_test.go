package app_test

import (
	"errors"
	"testing"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
)

func TestValidateQuiz(t *testing.T) {
	valid := func() domain.Quiz {
		return domain.Quiz{
			ID:              "active",
			Title:           "Screening",
			Description:     "General knowledge screening",
			DurationMinutes: 20,
			Questions: []domain.Question{
				{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectIndex: 1},
				{ID: "q2", Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectIndex: domain.NoCorrectIndex, CorrectText: " PARIS "},
			},
		}
	}
	if err := app.ValidateQuiz(valid()); err != nil {
		t.Fatalf("expected valid quiz, got %v", err)
	}

	cases := map[string]func(q *domain.Quiz){
		"short title":       func(q *domain.Quiz) { q.Title = "ab" },
		"short description": func(q *domain.Quiz) { q.Description = "too short" },
		"zero duration":     func(q *domain.Quiz) { q.DurationMinutes = 0 },
		"no questions":      func(q *domain.Quiz) { q.Questions = nil },
		"duplicate ids":     func(q *domain.Quiz) { q.Questions[1].ID = "q1" },
		"short text":        func(q *domain.Quiz) { q.Questions[0].Text = "2+2" },
		"single option":     func(q *domain.Quiz) { q.Questions[0].Options = []string{"4"} },
		"index out of range": func(q *domain.Quiz) {
			q.Questions[0].CorrectIndex = 5
		},
		"unmatched text": func(q *domain.Quiz) { q.Questions[1].CorrectText = "Berlin" },
	}
	for name, mutate := range cases {
		q := valid()
		mutate(&q)
		if err := app.ValidateQuiz(q); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
}
