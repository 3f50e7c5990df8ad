package http

import (
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/identity"
	"go.uber.org/zap"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Logger    *zap.Logger
	Auth      *app.AuthService
	Sessions  *app.SessionService
	Results   *app.ResultsService
	AllowList *app.AllowListService
	Identity  identity.Provider
	Feed      *app.ResultsFeed
	Limiter   app.RateLimiter
	Checks    map[string]Checker

	AdminKeyHash  string
	TokenTTL      time.Duration
	SecureCookie  bool
	AuthPerMinute int
	APIPerMinute  int
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.TokenTTL <= 0 {
		d.TokenTTL = identity.DefaultTokenTTL
	}
	return &Handler{Deps: d}
}
