package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type qualificationRequest struct {
	Qualified *bool `json:"qualified"`
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"))
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	result, err := h.Results.List(r.Context(), app.ResultsQuery{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
	})
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a valid number", domain.ErrInvalidInput, raw)
	}
	return n, nil
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.Results.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

func (h *Handler) setQualification(w http.ResponseWriter, r *http.Request) {
	var req qualificationRequest
	if err := readJSON(w, r, &req); err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	if req.Qualified == nil {
		respond(w, r, h.Logger, fmt.Errorf("%w: qualified is required", domain.ErrInvalidInput))
		return
	}
	candidate, err := h.Results.SetQualified(r.Context(), chi.URLParam(r, "id"), *req.Qualified)
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

func (h *Handler) deleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.Results.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	out, err := h.Results.Analytics(r.Context())
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// exportResults buffers the CSV so a failed query still gets a JSON error.
func (h *Handler) exportResults(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.Results.Export(r.Context(), r.URL.Query().Get("status"), &buf)
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("results exported", zap.Int("rows", n))

	filename := fmt.Sprintf("quiz-results-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) listAllowed(w http.ResponseWriter, r *http.Request) {
	entries, err := h.AllowList.List(r.Context())
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) addAllowed(w http.ResponseWriter, r *http.Request) {
	var req domain.AllowedCandidate
	if err := readJSON(w, r, &req); err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	entry, err := h.AllowList.Add(r.Context(), req)
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) removeAllowed(w http.ResponseWriter, r *http.Request) {
	if err := h.AllowList.Remove(r.Context(), chi.URLParam(r, "email")); err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
