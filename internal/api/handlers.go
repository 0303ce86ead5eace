// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"net/http"

	"github.com/nexlayer/nexops/internal/authz"
	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/models"
)

// Handlers carries the dependencies shared by every endpoint.
type Handlers struct {
	policy *authz.Policy

	users    docstore.Collection
	requests docstore.Collection
	projects docstore.Collection
	tasks    docstore.Collection
	reports  docstore.Collection
	messages docstore.Collection
}

// NewHandlers creates the handler set over the store and policy engine.
func NewHandlers(store docstore.Store, policy *authz.Policy) *Handlers {
	return &Handlers{
		policy:   policy,
		users:    store.Collection(models.CollectionUsers),
		requests: store.Collection(models.CollectionRequests),
		projects: store.Collection(models.CollectionProjects),
		tasks:    store.Collection(models.CollectionTasks),
		reports:  store.Collection(models.CollectionReports),
		messages: store.Collection(models.CollectionMessages),
	}
}

// principalOr401 returns the request principal, responding 401 when the
// authentication middleware did not run or did not set one.
func principalOr401(w http.ResponseWriter, r *http.Request) (*authz.Principal, bool) {
	p, ok := authz.PrincipalFrom(r.Context())
	if !ok {
		respondUnauthorized(w)
		return nil, false
	}
	return p, true
}

// Root serves a minimal service banner.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "nexops-api",
		"status":  "running",
	})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
