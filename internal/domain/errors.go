package domain

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no valid principal.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrCandidateNotFound is returned when the principal has no candidate record.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrInvalidInput indicates a malformed responses or time payload.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoQuestionsAvailable indicates the active quiz has an empty question bank.
	ErrNoQuestionsAvailable = errors.New("no questions available")
	// ErrQuizNotConfigured indicates no quiz metadata exists for the active quiz.
	ErrQuizNotConfigured = errors.New("quiz not configured")
	// ErrNoSessionAssigned is returned when submitting before a snapshot exists.
	ErrNoSessionAssigned = errors.New("no quiz session assigned")
	// ErrNotStarted is returned when submitting a quiz that was never started.
	ErrNotStarted = errors.New("quiz not started")
	// ErrAlreadySubmitted is returned for any session operation after submission.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrTimeExceeded is returned when the reported time is outside the allowed window.
	ErrTimeExceeded = errors.New("time limit exceeded")
	// ErrCorruptSession signals a stored snapshot with no questions.
	ErrCorruptSession = errors.New("corrupt quiz session")

	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrCandidateExists is returned when creating a record for an email already on file.
	ErrCandidateExists = errors.New("candidate already exists")
	// ErrNotAllowed is returned when an email is not on the allow-list.
	ErrNotAllowed = errors.New("email not on allow-list")
	// ErrAllowedExists is returned when adding an email that is already allowed.
	ErrAllowedExists = errors.New("email already allowed")
	// ErrNotSubmitted is returned when qualifying a candidate who has not submitted.
	ErrNotSubmitted = errors.New("quiz not submitted")
	// ErrRateLimited is returned by rate limiters once the window budget is spent.
	ErrRateLimited = errors.New("too many requests")
)

var userFaults = []error{
	ErrUnauthenticated,
	ErrCandidateNotFound,
	ErrInvalidInput,
	ErrNoQuestionsAvailable,
	ErrQuizNotConfigured,
	ErrNoSessionAssigned,
	ErrNotStarted,
	ErrAlreadySubmitted,
	ErrTimeExceeded,
	ErrQuizNotFound,
	ErrCandidateExists,
	ErrNotAllowed,
	ErrAllowedExists,
	ErrNotSubmitted,
	ErrRateLimited,
}

// IsServerFault reports whether err should be treated as a server-side fault
// (logged and alerted) rather than an expected, user-facing outcome.
func IsServerFault(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCorruptSession) {
		return true
	}
	for _, target := range userFaults {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}
