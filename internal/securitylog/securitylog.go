// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package securitylog records security-relevant events (firewall blocks,
// authentication and authorization failures) into the security_logs
// collection. Recording is strictly fire-and-forget: a full buffer or a
// failing store never delays or fails the request being served.
package securitylog

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/models"
)

// Event types recorded to the security log.
const (
	EventTypeFirewallBlock = "FIREWALL_BLOCK"
	EventTypeAuthFailure   = "AUTH_FAILURE"
)

// Event is one security log record.
type Event struct {
	Type      string            `json:"type"`
	IP        string            `json:"ip"`
	Path      string            `json:"path"`
	Method    string            `json:"method"`
	UserAgent string            `json:"userAgent,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Recorder writes events asynchronously through a bounded buffer. When
// the buffer is full the event is dropped with a warning; the caller is
// never blocked.
type Recorder struct {
	events chan Event
	logs   docstore.Collection

	stopOnce sync.Once
	done     chan struct{}
}

const defaultBuffer = 256

// NewRecorder starts a recorder writing into the store's security_logs
// collection. Call Close to flush and stop the writer.
func NewRecorder(store docstore.Store) *Recorder {
	r := &Recorder{
		events: make(chan Event, defaultBuffer),
		logs:   store.Collection(models.CollectionSecurityLogs),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues an event. It never blocks and never returns an error;
// failure to persist a security event must not affect request handling.
func (r *Recorder) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case r.events <- event:
	default:
		logging.Warn().
			Str("type", event.Type).
			Str("path", event.Path).
			Msg("security log buffer full, dropping event")
	}
}

// RecordRequest builds an event from the request and enqueues it.
func (r *Recorder) RecordRequest(req *http.Request, eventType string, details map[string]string) {
	r.Record(Event{
		Type:      eventType,
		IP:        clientIP(req),
		Path:      req.URL.Path,
		Method:    req.Method,
		UserAgent: req.UserAgent(),
		Details:   details,
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for event := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := r.logs.Add(ctx, event); err != nil {
			logging.Error().
				Err(err).
				Str("type", event.Type).
				Msg("failed to persist security event")
		}
		cancel()
	}
}

// Close stops accepting events, drains the buffer, and waits for the
// writer to finish.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.events)
	})
	<-r.done
}

// clientIP returns the requester's address, preferring X-Forwarded-For
// when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
