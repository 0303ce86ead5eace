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

// ListUsers returns every known user record.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceUser, authz.ActionList); err != nil {
		respondAuthzError(w, err)
		return
	}

	docs, err := h.users.Query(r.Context(), docstore.NewQuery())
	if err != nil {
		respondInternalError(w, err)
		return
	}
	users, err := docstore.DecodeAll[models.UserRecord](docs, func(u *models.UserRecord, id string) { u.ID = id })
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}
