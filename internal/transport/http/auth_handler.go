package http

import (
	"net/http"
	"time"

	"assessment-service/internal/domain"
	"assessment-service/internal/identity"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type profileResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	State        domain.SessionState `json:"state"`
	HasStarted   bool                `json:"hasStarted"`
	HasSubmitted bool                `json:"hasSubmitted"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  profileResponse `json:"user"`
}

func newProfile(c domain.Candidate) profileResponse {
	return profileResponse{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		State:        c.State(),
		HasStarted:   c.HasStarted,
		HasSubmitted: c.HasSubmitted,
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	candidate, err := h.Auth.SignIn(r.Context(), req.Email, req.Phone)
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	token, err := h.Identity.Issue(r.Context(), domain.Principal{CandidateID: candidate.ID, Email: candidate.Email})
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.TokenTTL / time.Second),
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: newProfile(candidate)})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if revoker, ok := h.Identity.(identity.Revoker); ok {
		if token := tokenFromRequest(r); token != "" {
			if err := revoker.Revoke(r.Context(), token); err != nil {
				h.Logger.Warn("token revoke failed", zap.Error(err))
			}
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.Auth.Profile(r.Context(), principalFrom(r))
	if err != nil {
		respond(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfile(candidate))
}
