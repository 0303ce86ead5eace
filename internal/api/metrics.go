// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics. Registered once on the default registry and exposed
// at /metrics.
var (
	metricFirewallBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexops",
		Subsystem: "firewall",
		Name:      "blocks_total",
		Help:      "Requests blocked by the firewall, by match source.",
	}, []string{"source"})

	metricAuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexops",
		Subsystem: "auth",
		Name:      "failures_total",
		Help:      "Credential verification failures, by cause.",
	}, []string{"cause"})

	metricAuthzDenials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nexops",
		Subsystem: "authz",
		Name:      "denials_total",
		Help:      "Requests denied by the access policy engine.",
	})

	metricRateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexops",
		Subsystem: "ratelimit",
		Name:      "rejected_total",
		Help:      "Requests rejected by the rate limiter, by endpoint class.",
	}, []string{"class"})
)
