// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package firewall screens incoming requests for known hostile patterns
// before any credential handling runs. Detection is plain case-insensitive
// substring matching over the raw query string and header values; it is a
// cheap tripwire in front of the real authorization layers, not a parser.
package firewall

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultPatterns is the built-in denylist. Order matters: the first
// matching pattern is the one reported.
var DefaultPatterns = []string{
	"union select",
	"drop table",
	"--",
	";--",
	"<script>",
	"alert(",
	"javascript:",
	"../",
	"etc/passwd",
	"cmd.exe",
	"/bin/sh",
}

// Verdict is the outcome of inspecting one request.
type Verdict struct {
	Blocked bool

	// Pattern is the matched denylist entry, empty when not blocked.
	Pattern string

	// Source names where the match was found: "query_params" or
	// "header:<name>".
	Source string
}

// Inspector matches requests against a fixed denylist.
type Inspector struct {
	patterns []string
}

// NewInspector creates an inspector for the given patterns. Empty entries
// are dropped; nil falls back to DefaultPatterns.
func NewInspector(patterns []string) *Inspector {
	if patterns == nil {
		patterns = DefaultPatterns
	}
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &Inspector{patterns: cleaned}
}

// Inspect checks the query string first, then each header value. The
// query is matched both as sent and percent-decoded, so encoding a
// payload does not slip it past. The first match wins; inspection never
// mutates the request.
func (i *Inspector) Inspect(r *http.Request) Verdict {
	if pattern, ok := i.match(r.URL.RawQuery); ok {
		return Verdict{Blocked: true, Pattern: pattern, Source: "query_params"}
	}
	if decoded, err := url.QueryUnescape(r.URL.RawQuery); err == nil && decoded != r.URL.RawQuery {
		if pattern, ok := i.match(decoded); ok {
			return Verdict{Blocked: true, Pattern: pattern, Source: "query_params"}
		}
	}

	for name, values := range r.Header {
		for _, v := range values {
			if pattern, ok := i.match(v); ok {
				return Verdict{Blocked: true, Pattern: pattern, Source: "header:" + strings.ToLower(name)}
			}
		}
	}

	return Verdict{}
}

func (i *Inspector) match(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	lowered := strings.ToLower(value)
	for _, p := range i.patterns {
		if strings.Contains(lowered, p) {
			return p, true
		}
	}
	return "", false
}
