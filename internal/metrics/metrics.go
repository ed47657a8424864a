// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package metrics defines Prometheus instrumentation for the sync service.
// All collectors are registered on the default registry via promauto and
// exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunsTotal counts completed sync runs by platform and outcome
	// (completed, partial, failed).
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sma_sync_runs_total",
		Help: "Total number of account sync runs by platform and outcome",
	}, []string{"platform", "outcome"})

	// SyncRunDuration observes end-to-end sync run latency.
	SyncRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sma_sync_run_duration_seconds",
		Help:    "Duration of account sync runs",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"platform"})

	// StageFailuresTotal counts non-fatal stage skips by platform and stage.
	StageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sma_sync_stage_failures_total",
		Help: "Total number of skipped sync stages by platform and stage",
	}, []string{"platform", "stage"})

	// UpstreamRequestDuration observes upstream API request latency by host
	// and status class.
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sma_upstream_request_duration_seconds",
		Help:    "Duration of upstream API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"host", "status"})

	// TokenRefreshesTotal counts OAuth refresh attempts by result
	// (refreshed, rejected, error).
	TokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sma_token_refreshes_total",
		Help: "Total number of OAuth token refresh attempts by result",
	}, []string{"result"})

	// CircuitBreakerState reports breaker state per upstream
	// (0 closed, 1 half-open, 2 open).
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sma_circuit_breaker_state",
		Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
	}, []string{"upstream"})

	// RowsWrittenTotal counts rows written to the analytics store by table.
	RowsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sma_rows_written_total",
		Help: "Total rows inserted or upserted by table",
	}, []string{"table"})

	// HTTPRequestDuration observes API handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sma_http_request_duration_seconds",
		Help:    "Duration of HTTP API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
