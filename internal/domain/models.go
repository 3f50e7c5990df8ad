package domain

import (
	"strings"
	"time"
)

// NoCorrectIndex marks a question whose answer is resolved through CorrectText.
const NoCorrectIndex = -1

// Unanswered is the stored selectedOption of a skipped question.
const Unanswered = "-1"

// Question is a bank entry. Options are ordered; CorrectIndex points into them
// or is NoCorrectIndex, in which case CorrectText is matched against the options.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	CorrectText  string   `json:"correctText,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

// ResolvedAnswer returns the index of the correct option, or NoCorrectIndex when
// neither CorrectIndex nor CorrectText resolves to an option.
func (q Question) ResolvedAnswer() int {
	if q.CorrectIndex >= 0 {
		if q.CorrectIndex < len(q.Options) {
			return q.CorrectIndex
		}
		return NoCorrectIndex
	}
	want := normalizeAnswer(q.CorrectText)
	if want == "" {
		return NoCorrectIndex
	}
	for i, opt := range q.Options {
		if normalizeAnswer(opt) == want {
			return i
		}
	}
	return NoCorrectIndex
}

// MatchesText reports whether option text equals the question's CorrectText,
// ignoring case and surrounding whitespace.
func (q Question) MatchesText(option string) bool {
	want := normalizeAnswer(q.CorrectText)
	return want != "" && normalizeAnswer(option) == want
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QuizMetadata describes the active quiz definition.
type QuizMetadata struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
}

// Quiz is the stored quiz document: metadata plus its question bank.
type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"durationMinutes"`
	Questions       []Question `json:"questions"`
}

// Metadata returns the quiz definition without the bank.
func (q Quiz) Metadata() QuizMetadata {
	return QuizMetadata{
		Title:           q.Title,
		Description:     q.Description,
		DurationMinutes: q.DurationMinutes,
	}
}

// Snapshot is the question set assigned to one candidate at start time.
// Questions keep their answer metadata so scoring never consults the live bank.
type Snapshot struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DurationSeconds int        `json:"durationSeconds"`
	Questions       []Question `json:"questions"`
}

// Response is a stored answer. SelectedOption is the chosen index rendered as
// text, or Unanswered.
type Response struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// SessionState is the lifecycle position of a candidate.
type SessionState string

const (
	StateNotStarted SessionState = "not-started"
	StateInProgress SessionState = "in-progress"
	StateSubmitted  SessionState = "submitted"
)

// Candidate is the durable per-candidate record.
type Candidate struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	HasStarted      bool       `json:"hasStarted"`
	HasSubmitted    bool       `json:"hasSubmitted"`
	Session         *Snapshot  `json:"session,omitempty"`
	Responses       []Response `json:"responses"`
	Score           int        `json:"score"`
	TimeUsedSeconds float64    `json:"timeUsedSeconds"`
	Qualified       bool       `json:"qualified"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// State derives the lifecycle state from the record flags.
func (c Candidate) State() SessionState {
	switch {
	case c.HasSubmitted:
		return StateSubmitted
	case c.HasStarted:
		return StateInProgress
	default:
		return StateNotStarted
	}
}

// Principal is the verified identity asserted for a request.
type Principal struct {
	CandidateID string `json:"id"`
	Email       string `json:"email"`
}

// AllowedCandidate is an allow-list entry.
type AllowedCandidate struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}
