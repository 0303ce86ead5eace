// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"errors"
	"net/http"

	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/models"
)

// Login completes a session bootstrap for a verified credential: it
// ensures a user record exists for the subject and returns the effective
// role the caller will operate under. Verification itself already
// happened in the authentication middleware.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var record models.UserRecord
	err := h.users.Get(r.Context(), p.Identity.SubjectID, &record)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		record = models.UserRecord{
			Name:  p.Identity.DisplayName,
			Email: p.Identity.Email,
			Role:  p.Role.String(),
		}
		if err := h.users.Set(r.Context(), p.Identity.SubjectID, record); err != nil {
			respondInternalError(w, err)
			return
		}
		logging.Info().
			Str("subject", p.Identity.SubjectID).
			Str("email", logging.SanitizeEmail(p.Identity.Email)).
			Str("role", p.Role.String()).
			Msg("registered new user record")
	case err != nil:
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]string{
			"id":    p.Identity.SubjectID,
			"name":  p.Identity.DisplayName,
			"email": p.Identity.Email,
			"role":  p.Role.String(),
		},
	})
}
