package app

import (
	"fmt"
	"strings"

	"assessment-service/internal/domain"
)

// ValidateQuiz checks a quiz definition before it becomes the active bank.
func ValidateQuiz(q domain.Quiz) error {
	if len([]rune(strings.TrimSpace(q.Title))) < 3 {
		return fmt.Errorf("%w: title must be at least 3 characters", domain.ErrInvalidInput)
	}
	if len([]rune(strings.TrimSpace(q.Description))) < 10 {
		return fmt.Errorf("%w: description must be at least 10 characters", domain.ErrInvalidInput)
	}
	if q.DurationMinutes < 1 {
		return fmt.Errorf("%w: duration must be at least 1 minute", domain.ErrInvalidInput)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", domain.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			return fmt.Errorf("%w: question %d has no id", domain.ErrInvalidInput, i+1)
		}
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", domain.ErrInvalidInput, question.ID)
		}
		seen[question.ID] = struct{}{}

		if len([]rune(strings.TrimSpace(question.Text))) < 5 {
			return fmt.Errorf("%w: question %q text must be at least 5 characters", domain.ErrInvalidInput, question.ID)
		}
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %q needs at least 2 options", domain.ErrInvalidInput, question.ID)
		}
		if question.ResolvedAnswer() == domain.NoCorrectIndex {
			return fmt.Errorf("%w: question %q has no resolvable correct answer", domain.ErrInvalidInput, question.ID)
		}
	}
	return nil
}
