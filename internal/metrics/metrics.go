// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	// RecipeWrites counts recipe mutations by operation (create, update, delete)
	// and outcome (ok, invalid, forbidden, not_found, error).
	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Recipe create, update and delete attempts.",
		},
		[]string{"operation", "outcome"},
	)

	// InterestSetChanges counts favorite and shopping cart mutations.
	InterestSetChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_interest_set_changes_total",
			Help: "Favorite and shopping cart add/remove attempts.",
		},
		[]string{"set", "operation", "outcome"},
	)

	FollowChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_follow_changes_total",
			Help: "Follow and unfollow attempts.",
		},
		[]string{"operation", "outcome"},
	)

	ShoppingListLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_lines",
			Help:    "Number of lines in generated shopping lists.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	ImagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_images_stored_total",
			Help: "Recipe images written to the image store.",
		},
		[]string{"backend", "outcome"},
	)
)

// Outcome labels shared by the write counters.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeConflict  = "conflict"
	OutcomeNotFound  = "not_found"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)
