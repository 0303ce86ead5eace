// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"errors"
	"net/http"

	"github.com/nexlayer/nexops/internal/authz"
	"github.com/nexlayer/nexops/internal/logging"
)

// respondAuthzError maps policy layer errors onto HTTP responses.
// Existence is settled before access in the policy layer, so ErrNotFound
// here genuinely means the record does not exist.
func respondAuthzError(w http.ResponseWriter, err error) {
	if errors.Is(err, authz.ErrNotFound) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "record not found", nil)
		return
	}

	var fe *authz.ForbiddenError
	if errors.As(err, &fe) {
		metricAuthzDenials.Inc()
		respondError(w, http.StatusForbidden, ErrCodeForbidden, fe.Reason, nil)
		return
	}

	respondInternalError(w, err)
}

// respondInternalError logs the cause and returns an opaque 500.
func respondInternalError(w http.ResponseWriter, err error) {
	logging.Error().Err(err).Msg("request failed")
	respondError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error", nil)
}
