package http

import (
	"errors"
	"net/http"

	"assessment-service/internal/domain"
)

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{domain.ErrCandidateNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrNoQuestionsAvailable, http.StatusNotFound, "NO_QUESTIONS"},
	{domain.ErrQuizNotConfigured, http.StatusNotFound, "QUIZ_NOT_CONFIGURED"},
	{domain.ErrQuizNotFound, http.StatusNotFound, "QUIZ_NOT_CONFIGURED"},
	{domain.ErrNoSessionAssigned, http.StatusConflict, "NO_SESSION_ASSIGNED"},
	{domain.ErrNotStarted, http.StatusConflict, "NOT_STARTED"},
	{domain.ErrAlreadySubmitted, http.StatusConflict, "ALREADY_SUBMITTED"},
	{domain.ErrTimeExceeded, http.StatusUnprocessableEntity, "TIME_EXCEEDED"},
	{domain.ErrNotAllowed, http.StatusForbidden, "NOT_ALLOWED"},
	{domain.ErrAllowedExists, http.StatusConflict, "ALREADY_ALLOWED"},
	{domain.ErrCandidateExists, http.StatusConflict, "CANDIDATE_EXISTS"},
	{domain.ErrNotSubmitted, http.StatusConflict, "NOT_SUBMITTED"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
}

func statusFor(err error) (int, string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}
