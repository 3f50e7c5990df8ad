package app

import (
	"strconv"
	"strings"

	"assessment-service/internal/domain"
)

// answerMap indexes snapshot questions by id for scoring.
func answerMap(snapshot domain.Snapshot) map[string]domain.Question {
	answers := make(map[string]domain.Question, len(snapshot.Questions))
	for _, q := range snapshot.Questions {
		answers[q.ID] = q
	}
	return answers
}

// Score counts correct responses against the snapshot. Each response is
// evaluated on its own: duplicate question ids count independently and unknown
// ids contribute nothing.
func Score(snapshot domain.Snapshot, responses []domain.Response) int {
	answers := answerMap(snapshot)
	score := 0
	for _, r := range responses {
		q, ok := answers[r.QuestionID]
		if !ok {
			continue
		}
		if isCorrect(q, selectedIndex(r.SelectedOption)) {
			score++
		}
	}
	return score
}

func isCorrect(q domain.Question, selected int) bool {
	if q.CorrectIndex >= 0 {
		return selected == q.CorrectIndex
	}
	if selected < 0 || selected >= len(q.Options) {
		return false
	}
	return q.MatchesText(q.Options[selected])
}

// selectedIndex parses a stored selectedOption; anything unparseable is -1.
func selectedIndex(raw string) int {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < 0 {
		return -1
	}
	return idx
}

// normalizeResponses renders submissions in storage form, keeping their order.
func normalizeResponses(answers []domain.AnswerSubmission) []domain.Response {
	responses := make([]domain.Response, 0, len(answers))
	for _, a := range answers {
		selected := domain.Unanswered
		if a.SelectedOption != nil {
			selected = strconv.Itoa(*a.SelectedOption)
		}
		responses = append(responses, domain.Response{
			QuestionID:     strings.TrimSpace(a.QuestionID),
			SelectedOption: selected,
		})
	}
	return responses
}

func countAttempted(responses []domain.Response) int {
	n := 0
	for _, r := range responses {
		if selectedIndex(r.SelectedOption) >= 0 {
			n++
		}
	}
	return n
}
