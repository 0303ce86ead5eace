// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexlayer/nexops/internal/authz"
	"github.com/nexlayer/nexops/internal/firewall"
	"github.com/nexlayer/nexops/internal/securitylog"
)

// NewRouter assembles the full request pipeline. Stage order is fixed:
// security headers, CORS, request id, the audit hook (which must observe
// the final status of every later stage), the firewall, then per-group
// rate limiting and authentication ahead of the handlers.
//
// The audit hook wraps the firewall on purpose: a firewall block is
// recorded twice, once as FIREWALL_BLOCK by the firewall itself and once
// as AUTH_FAILURE by the audit hook seeing the 403.
func NewRouter(
	h *Handlers,
	mw *Middleware,
	inspector *firewall.Inspector,
	recorder *securitylog.Recorder,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(SecurityHeaders())
	r.Use(mw.CORS())
	r.Use(securitylog.AuditMiddleware(recorder))
	r.Use(firewall.Middleware(inspector, func(req *http.Request, v firewall.Verdict) {
		metricFirewallBlocks.WithLabelValues(v.Source).Inc()
		recorder.RecordRequest(req, securitylog.EventTypeFirewallBlock, map[string]string{
			"pattern": v.Pattern,
			"source":  v.Source,
		})
	}))

	// Unauthenticated surface.
	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Login class: strict limit, client default role.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitLogin())
		r.Use(mw.Authenticate(authz.RoleClient))
		r.Post("/api/login", h.Login)
	})

	// Intake class: strict limit, client default role.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitIntake())
		r.Use(mw.Authenticate(authz.RoleClient))
		r.Post("/api/requests", h.CreateRequest)
	})

	// Client-facing surface: general limit, client default role.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitAPI())
		r.Use(mw.Authenticate(authz.RoleClient))
		r.Get("/api/projects", h.ListProjects)
		r.Get("/api/projects/{id}/messages", h.ListMessages)
		r.Post("/api/projects/{id}/messages", h.CreateMessage)
	})

	// Operational surface: general limit, member default role.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitAPI())
		r.Use(mw.Authenticate(authz.RoleMember))
		r.Get("/api/admin/requests", h.ListAdminRequests)
		r.Patch("/api/requests/{id}/approve", h.ApproveRequest)
		r.Post("/api/projects", h.CreateProject)
		r.Patch("/api/projects/{id}", h.PatchProject)
		r.Post("/api/projects/{id}/assign", h.AssignProject)
		r.Get("/api/tasks", h.ListTasks)
		r.Post("/api/tasks", h.CreateTask)
		r.Patch("/api/tasks/{id}", h.PatchTask)
		r.Get("/api/reports", h.ListReports)
		r.Post("/api/reports", h.CreateReport)
		r.Get("/api/reports/{projectID}", h.ProjectReports)
		r.Get("/api/users", h.ListUsers)
	})

	return r
}
