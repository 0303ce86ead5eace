// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package firewall

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	return r
}

func TestInspector_Inspect(t *testing.T) {
	inspector := NewInspector(nil)

	tests := []struct {
		name        string
		target      string
		headers     map[string]string
		wantBlocked bool
		wantPattern string
		wantSource  string
	}{
		{
			name:        "clean query passes",
			target:      "/api/projects?name=Jane",
			wantBlocked: false,
		},
		{
			name:        "script tag in query",
			target:      "/api/projects?name=<script>alert(1)</script>",
			wantBlocked: true,
			wantPattern: "<script>",
			wantSource:  "query_params",
		},
		{
			name:        "sql injection in query",
			target:      "/api/tasks?id=1%20union%20select%20*",
			wantBlocked: true,
			wantPattern: "union select",
			wantSource:  "query_params",
		},
		{
			name:        "case insensitive match",
			target:      "/api/tasks?id=1%20UNION%20SELECT%20*",
			wantBlocked: true,
			wantPattern: "union select",
		},
		{
			name:        "path traversal in header",
			target:      "/api/projects",
			headers:     map[string]string{"X-Custom": "../../etc/passwd"},
			wantBlocked: true,
			wantSource:  "header:x-custom",
		},
		{
			name:        "clean headers pass",
			target:      "/api/projects",
			headers:     map[string]string{"Accept": "application/json"},
			wantBlocked: false,
		},
		{
			name:        "no query no headers passes",
			target:      "/healthz",
			wantBlocked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRequest(t, tt.target)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			v := inspector.Inspect(r)
			assert.Equal(t, tt.wantBlocked, v.Blocked)
			if tt.wantPattern != "" {
				assert.Equal(t, tt.wantPattern, v.Pattern)
			}
			if tt.wantSource != "" {
				assert.Equal(t, tt.wantSource, v.Source)
			}
		})
	}
}

func TestInspector_FirstMatchWins(t *testing.T) {
	inspector := NewInspector([]string{"aaa", "bbb"})

	r := newRequest(t, "/x?q=bbbaaa")
	v := inspector.Inspect(r)
	require.True(t, v.Blocked)
	assert.Equal(t, "aaa", v.Pattern)
}

func TestInspector_QueryCheckedBeforeHeaders(t *testing.T) {
	inspector := NewInspector(nil)

	r := newRequest(t, "/x?q=<script>")
	r.Header.Set("X-Evil", "cmd.exe")

	v := inspector.Inspect(r)
	require.True(t, v.Blocked)
	assert.Equal(t, "query_params", v.Source)
}

func TestMiddleware(t *testing.T) {
	inspector := NewInspector(nil)

	var reported []Verdict
	mw := Middleware(inspector, func(_ *http.Request, v Verdict) {
		reported = append(reported, v)
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("blocked request gets fixed 403", func(t *testing.T) {
		reported = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?q=<script>alert(1)</script>", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "FIREWALL_BLOCK")
		require.Len(t, reported, 1)
		assert.Equal(t, "<script>", reported[0].Pattern)
	})

	t.Run("clean request passes through", func(t *testing.T) {
		reported = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?q=hello", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, reported)
	})
}
