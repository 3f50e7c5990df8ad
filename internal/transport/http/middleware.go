package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
	"assessment-service/internal/identity"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey int

const ctxKeyPrincipal ctxKey = iota

const (
	tokenCookieName = "token"
	adminKeyHeader  = "X-Admin-Key"
)

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func newStructuredLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Int64("duration_ms", time.Since(start).Milliseconds()),
					zap.String("request_id", requestID(r)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// rateLimit applies a fixed-window budget per bucket and client IP. Limiter
// failures let the request through.
func rateLimit(limiter app.RateLimiter, logger *zap.Logger, bucket string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := bucket + ":" + clientIP(r)
			decision, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))
			if !decision.Allowed {
				retry := time.Until(decision.Reset).Seconds()
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(int(retry)))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", domain.ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// authenticate resolves the token cookie or bearer header into a principal.
func authenticate(provider identity.Provider, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				respond(w, r, logger, domain.ErrUnauthenticated)
				return
			}
			p, err := provider.Verify(r.Context(), token)
			if err != nil {
				respond(w, r, logger, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPrincipal, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(tokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func principalFrom(r *http.Request) domain.Principal {
	p, _ := r.Context().Value(ctxKeyPrincipal).(domain.Principal)
	return p
}

// requireAdmin compares the X-Admin-Key header (or key query parameter for
// websocket clients) against the configured bcrypt hash.
func requireAdmin(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(adminKeyHeader)
			if key == "" {
				key = r.URL.Query().Get("key")
			}
			if key == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "admin key required")
				return
			}
			if keyHash == "" || bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
