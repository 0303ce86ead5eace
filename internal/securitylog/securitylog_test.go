// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package securitylog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/models"
)

func newTestRecorder(t *testing.T) (*Recorder, docstore.Collection) {
	t.Helper()
	store, err := docstore.NewMemStore()
	require.NoError(t, err)
	r := NewRecorder(store)
	t.Cleanup(r.Close)
	return r, store.Collection(models.CollectionSecurityLogs)
}

func waitForEvents(t *testing.T, logs docstore.Collection, n int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		docs, err := logs.Query(context.Background(), docstore.NewQuery())
		require.NoError(t, err)
		if len(docs) >= n {
			events, err := docstore.DecodeAll[Event](docs, nil)
			require.NoError(t, err)
			return events
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d security events", n)
	return nil
}

func TestRecorder_Record(t *testing.T) {
	recorder, logs := newTestRecorder(t)

	recorder.Record(Event{
		Type:   EventTypeFirewallBlock,
		IP:     "203.0.113.9",
		Path:   "/api/projects",
		Method: http.MethodGet,
		Details: map[string]string{
			"pattern": "<script>",
			"source":  "query_params",
		},
	})

	events := waitForEvents(t, logs, 1)
	assert.Equal(t, EventTypeFirewallBlock, events[0].Type)
	assert.Equal(t, "203.0.113.9", events[0].IP)
	assert.Equal(t, "<script>", events[0].Details["pattern"])
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestRecorder_RecordRequest_ClientIP(t *testing.T) {
	recorder, logs := newTestRecorder(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "192.0.2.1:54321"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	req.Header.Set("User-Agent", "curl/8.0")

	recorder.RecordRequest(req, EventTypeAuthFailure, nil)

	events := waitForEvents(t, logs, 1)
	assert.Equal(t, "198.51.100.7", events[0].IP)
	assert.Equal(t, "/api/login", events[0].Path)
	assert.Equal(t, "curl/8.0", events[0].UserAgent)
}

func TestAuditMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantEvent bool
	}{
		{"401 is recorded", http.StatusUnauthorized, true},
		{"403 is recorded", http.StatusForbidden, true},
		{"200 is ignored", http.StatusOK, false},
		{"404 is ignored", http.StatusNotFound, false},
		{"500 is ignored", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, logs := newTestRecorder(t)
			handler := AuditMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
			assert.Equal(t, tt.status, rec.Code)

			if tt.wantEvent {
				events := waitForEvents(t, logs, 1)
				assert.Equal(t, EventTypeAuthFailure, events[0].Type)
			} else {
				time.Sleep(50 * time.Millisecond)
				docs, err := logs.Query(context.Background(), docstore.NewQuery())
				require.NoError(t, err)
				assert.Empty(t, docs)
			}
		})
	}
}

func TestAuditMiddleware_ImplicitOK(t *testing.T) {
	recorder, logs := newTestRecorder(t)
	handler := AuditMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(50 * time.Millisecond)
	docs, err := logs.Query(context.Background(), docstore.NewQuery())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
