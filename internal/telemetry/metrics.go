/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package telemetry exposes Prometheus metrics for generation runs and
// catalog traffic.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation run metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listgen_runs_total",
			Help: "Total number of generation runs by outcome",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "listgen_run_duration_seconds",
			Help:    "Generation run duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	PlaylistItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "listgen_playlist_items",
			Help: "Number of items written by the last run per playlist",
		},
		[]string{"playlist"},
	)

	PlaylistSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listgen_playlist_selected_total",
			Help: "Times each playlist was chosen by the selection rules",
		},
		[]string{"playlist"},
	)
)

// Catalog metrics
var (
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listgen_catalog_requests_total",
			Help: "Total number of media server API requests",
		},
		[]string{"endpoint", "status"},
	)

	CatalogItemsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listgen_catalog_items_fetched_total",
			Help: "Total number of catalog items fetched",
		},
	)
)

// Sort diagnostics
var (
	SortKeysMissing = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listgen_sort_keys_missing_total",
			Help: "Items encountered without a usable sort key",
		},
		[]string{"sort_by"},
	)
)
