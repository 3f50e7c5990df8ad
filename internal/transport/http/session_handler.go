package http

import (
	"fmt"
	"net/http"

	"assessment-service/internal/domain"
)

type submitRequest struct {
	Responses []domain.AnswerSubmission `json:"responses"`
	TimeUsed  *float64                  `json:"timeUsed"`
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.Start(r.Context(), principalFrom(r))
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := readJSON(w, r, &req); err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	if req.TimeUsed == nil {
		respond(w, r, h.Logger, fmt.Errorf("%w: timeUsed is required", domain.ErrInvalidInput))
		return
	}
	result, err := h.Sessions.Submit(r.Context(), principalFrom(r), req.Responses, *req.TimeUsed)
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
