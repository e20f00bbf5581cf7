/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package metrics exposes Prometheus counters for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled API requests by route and outcome.
	// Outcome is "remote" when the analysis service answered, "fallback"
	// when local state covered for a remote failure, and "local" for
	// routes served from local state by design.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "API requests handled by the gateway.",
		},
		[]string{"route", "outcome"},
	)

	// RemoteFailuresTotal counts failed calls to the analysis service.
	// Kind is "unavailable" for transport failures, "error" for non-2xx
	// responses.
	RemoteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_remote_failures_total",
			Help: "Failed outbound calls to the analysis service.",
		},
		[]string{"kind"},
	)

	// RequestDuration observes end-to-end handler latency per route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Request handling latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
