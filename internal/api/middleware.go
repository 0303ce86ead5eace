// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/nexlayer/nexops/internal/authz"
	"github.com/nexlayer/nexops/internal/config"
	"github.com/nexlayer/nexops/internal/identity"
	"github.com/nexlayer/nexops/internal/logging"
)

// Middleware builds the per-request security chain from configuration.
type Middleware struct {
	cfg      *config.Config
	verifier identity.Verifier
	resolver *authz.Resolver
	cors     func(http.Handler) http.Handler
}

// NewMiddleware creates the middleware factory.
func NewMiddleware(cfg *config.Config, verifier identity.Verifier, resolver *authz.Resolver) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &Middleware{
		cfg:      cfg,
		verifier: verifier,
		resolver: resolver,
		cors:     corsHandler,
	}
}

// CORS returns the configured CORS middleware.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// SecurityHeaders adds the standard hardening headers to every response.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Endpoint classes for rate limiting. Each class has its own counter per
// client address; exhausting one class leaves the others untouched.
const (
	rateClassIntake = "intake"
	rateClassLogin  = "login"
	rateClassAPI    = "api"
)

// RateLimitIntake limits request-intake submissions.
func (m *Middleware) RateLimitIntake() func(http.Handler) http.Handler {
	return m.rateLimit(rateClassIntake, m.cfg.Security.RateLimit.Intake)
}

// RateLimitLogin limits login attempts.
func (m *Middleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.rateLimit(rateClassLogin, m.cfg.Security.RateLimit.Login)
}

// RateLimitAPI limits general authenticated calls.
func (m *Middleware) RateLimitAPI() func(http.Handler) http.Handler {
	return m.rateLimit(rateClassAPI, m.cfg.Security.RateLimit.API)
}

func (m *Middleware) rateLimit(class string, requests int) func(http.Handler) http.Handler {
	if m.cfg.Security.RateLimit.Disabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metricRateLimited.WithLabelValues(class).Inc()
			logging.Warn().
				Str("class", class).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Msg("rate limit exceeded")
			respondError(w, http.StatusTooManyRequests, ErrCodeRateLimited,
				"too many requests, slow down", nil)
		}),
	)
}

// Authenticate verifies the bearer credential and resolves the effective
// role, using defaultRole when no higher-trust source yields one. Every
// failure collapses to a uniform 401; the specific cause goes to the log
// and the failure counter only.
func (m *Middleware) Authenticate(defaultRole authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer, ok := bearerToken(r)
			if !ok {
				metricAuthFailures.WithLabelValues("missing").Inc()
				respondUnauthorized(w)
				return
			}

			id, err := m.verifier.Verify(r.Context(), bearer)
			if err != nil {
				cause := "invalid"
				if errors.Is(err, identity.ErrExpiredCredentials) {
					cause = "expired"
				}
				metricAuthFailures.WithLabelValues(cause).Inc()
				logging.Debug().
					Err(err).
					Str("path", r.URL.Path).
					Str("token", logging.SanitizeToken(bearer)).
					Msg("credential verification failed")
				respondUnauthorized(w)
				return
			}

			principal := &authz.Principal{
				Identity: id,
				Role:     m.resolver.Resolve(r.Context(), id, defaultRole),
			}

			ctx := authz.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter) {
	respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid or missing credentials", nil)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
