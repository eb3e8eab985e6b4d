// Package metrics declares the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timewise"

var (
	EntryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_operations_total",
			Help:      "Entry store operations by kind and outcome.",
		},
		[]string{"op", "result"},
	)

	EntryLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "entry_load_duration_seconds",
			Help:      "Time spent fetching a user's entries from the store.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	SuggestionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_requests_total",
			Help:      "Suggestion requests by outcome (ok, skipped, error).",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template and status code.",
		},
		[]string{"route", "code"},
	)
)

// Outcome labels.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)
