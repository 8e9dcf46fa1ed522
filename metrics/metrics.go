// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route pattern, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelbase_http_requests_total",
		Help: "The total number of handled HTTP requests",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelbase_http_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelbase_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelbase_registrations_total",
		Help: "The total number of registration attempts",
	}, []string{"status"})

	// AuthResolutionsTotal counts AccessGuard outcomes: anonymous, missing_user,
	// invalid_token, resolved.
	AuthResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelbase_auth_resolutions_total",
		Help: "The total number of bearer token resolutions by outcome",
	}, []string{"outcome"})

	VideoViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reelbase_video_views_total",
		Help: "The total number of recorded video views",
	})

	WatchlistMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelbase_watchlist_mutations_total",
		Help: "The total number of watchlist mutations",
	}, []string{"op", "status"})
)
