// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package securitylog

import (
	"net/http"
	"strconv"
)

// statusWriter captures the final status code written downstream.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// AuditMiddleware watches responses and records an AUTH_FAILURE event for
// every request that finishes with 401 or 403, regardless of which stage
// produced it. Recording happens after the response is already written.
func AuditMiddleware(recorder *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			if sw.status == http.StatusUnauthorized || sw.status == http.StatusForbidden {
				recorder.RecordRequest(r, EventTypeAuthFailure, map[string]string{
					"status": strconv.Itoa(sw.status),
				})
			}
		})
	}
}
