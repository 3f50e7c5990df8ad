package domain

import "time"

// QuestionView is a snapshot question as shown to a candidate.
type QuestionView struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// SessionView is the sanitized session returned by start. It never carries
// correct answers.
type SessionView struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DurationSeconds int            `json:"durationSeconds"`
	Questions       []QuestionView `json:"questions"`
	Responses       []Response     `json:"responses"`
	TimeUsedSeconds float64        `json:"timeUsedSeconds"`
	Resumed         bool           `json:"resumed"`
}

// NewSessionView strips answer metadata from a snapshot.
func NewSessionView(s Snapshot, responses []Response, timeUsed float64, resumed bool) SessionView {
	questions := make([]QuestionView, 0, len(s.Questions))
	for _, q := range s.Questions {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		questions = append(questions, QuestionView{
			ID:       q.ID,
			Text:     q.Text,
			Options:  options,
			ImageURL: q.ImageURL,
		})
	}
	if responses == nil {
		responses = []Response{}
	}
	return SessionView{
		Title:           s.Title,
		Description:     s.Description,
		DurationSeconds: s.DurationSeconds,
		Questions:       questions,
		Responses:       responses,
		TimeUsedSeconds: timeUsed,
		Resumed:         resumed,
	}
}

// AnswerSubmission is one submitted answer. A nil SelectedOption means the
// question was left unanswered.
type AnswerSubmission struct {
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOption,omitempty"`
}

// SubmissionResult carries aggregate counts only, never per-question correctness.
type SubmissionResult struct {
	TotalQuestions  int     `json:"totalQuestions"`
	Attempted       int     `json:"attempted"`
	TimeUsedSeconds float64 `json:"timeUsedSeconds"`
}

// SubmissionEvent is broadcast to result-feed subscribers after a submit commits.
type SubmissionEvent struct {
	CandidateID     string    `json:"candidateId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	Attempted       int       `json:"attempted"`
	TimeUsedSeconds float64   `json:"timeUsedSeconds"`
	SubmittedAt     time.Time `json:"submittedAt"`
}
