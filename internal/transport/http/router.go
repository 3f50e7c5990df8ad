package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the public, candidate and admin routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(h.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		if h.Limiter != nil {
			r.Use(rateLimit(h.Limiter, h.Logger, "api", h.APIPerMinute, time.Minute))
		}
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/auth", func(r chi.Router) {
			if h.Limiter != nil {
				r.Use(rateLimit(h.Limiter, h.Logger, "auth", h.AuthPerMinute, time.Minute))
			}
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.With(authenticate(h.Identity, h.Logger)).Get("/me", h.me)
		})

		r.Route("/quiz", func(r chi.Router) {
			r.Use(authenticate(h.Identity, h.Logger))
			r.Post("/start", h.startQuiz)
			r.Post("/submit", h.submitQuiz)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin(h.AdminKeyHash))
			r.Get("/results", h.listResults)
			r.Get("/results/{id}", h.getResult)
			r.Patch("/results/{id}/qualification", h.setQualification)
			r.Delete("/results/{id}", h.deleteResult)
			r.Get("/analytics", h.analytics)
			r.Get("/export", h.exportResults)
			r.Get("/allowed", h.listAllowed)
			r.Post("/allowed", h.addAllowed)
			r.Delete("/allowed/{email}", h.removeAllowed)
			if h.Feed != nil {
				r.Get("/feed", NewFeedHandler(h.Feed, h.Logger).ServeWS)
			}
		})
	})

	return r
}
