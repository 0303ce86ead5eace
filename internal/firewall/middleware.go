// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package firewall

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/models"
)

// Middleware blocks matched requests with a fixed 403 response and hands
// the verdict to report before the request reaches any later stage.
// report may be nil. Blocking never waits on reporting.
func Middleware(inspector *Inspector, report func(r *http.Request, v Verdict)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verdict := inspector.Inspect(r)
			if !verdict.Blocked {
				next.ServeHTTP(w, r)
				return
			}

			logging.Warn().
				Str("pattern", verdict.Pattern).
				Str("source", verdict.Source).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Msg("firewall blocked request")

			if report != nil {
				report(r, verdict)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)

			resp := models.APIResponse{
				Status:   "error",
				Metadata: models.Metadata{Timestamp: time.Now().UTC()},
				Error: &models.APIError{
					Code:    "FIREWALL_BLOCK",
					Message: "request blocked by security policy",
				},
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				logging.Error().Err(err).Msg("failed to write firewall response")
			}
		})
	}
}
