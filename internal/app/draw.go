package app

import (
	"math/rand"

	"assessment-service/internal/domain"
)

// DefaultQuestionCount is the number of questions drawn per candidate.
const DefaultQuestionCount = 15

// Draw shuffles a copy of bank with Fisher-Yates and returns the first
// min(n, len(bank)) questions. intn must return a uniform value in [0, n);
// nil uses the runtime-seeded generator so draws cannot be predicted.
func Draw(bank []domain.Question, n int, intn func(int) int) []domain.Question {
	if intn == nil {
		intn = rand.Intn
	}
	if n <= 0 {
		return []domain.Question{}
	}

	shuffled := make([]domain.Question, len(bank))
	copy(shuffled, bank)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	// Options are copied too; the snapshot must not alias the cached bank.
	for i := range shuffled {
		options := make([]string, len(shuffled[i].Options))
		copy(options, shuffled[i].Options)
		shuffled[i].Options = options
	}
	return shuffled
}
