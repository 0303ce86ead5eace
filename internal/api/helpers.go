// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package api assembles the HTTP surface: the chi router, the security
// middleware chain (headers, CORS, firewall, rate limiting, audit,
// authentication), and the business handlers.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/models"
)

// API error codes returned in the response envelope.
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInvalidJSON   = "INVALID_JSON"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeFirewallBlock = "FIREWALL_BLOCK"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// maxBodyBytes caps request bodies to keep decode costs bounded.
const maxBodyBytes = 1 << 20

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	resp := models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	writeResponse(w, status, resp)
}

// respondError writes an error envelope. Message must be safe to show to
// the caller; internal detail belongs in logs.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	writeResponse(w, status, resp)
}

func writeResponse(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// decodeJSON decodes the request body into dest, enforcing the size cap
// and rejecting malformed input with a 400. Returns false after writing
// the error response.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidJSON, "request body is not valid JSON", nil)
		return false
	}
	return true
}
