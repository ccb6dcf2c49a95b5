// Package metrics holds Prometheus instruments that are used across the
// panel.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playeradmin_backend_requests_total",
			Help: "Requests sent to the players backend, by operation and outcome.",
		}, []string{"op", "outcome"})

	BackendRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playeradmin_backend_request_seconds",
			Help:    "Latency of players backend requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"})

	PanelActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playeradmin_panel_actions_total",
			Help: "Panel operations triggered by users, by action and outcome.",
		}, []string{"action", "outcome"})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "playeradmin_active_sessions",
			Help: "Number of panel sessions currently held in memory.",
		})

	SessionLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playeradmin_session_load_total",
			Help: "Cumulative number of panel sessions loaded into memory.",
		})

	SessionLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playeradmin_session_load_errors_total",
			Help: "Cumulative number of panel session load errors.",
		})

	SessionEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playeradmin_session_evict_total",
			Help: "Cumulative number of panel sessions evicted from memory.",
		})
)

func init() {
	prometheus.MustRegister(
		BackendRequestsTotal,
		BackendRequestSeconds,
		PanelActionsTotal,
		ActiveSessions,
		SessionLoadTotal,
		SessionLoadErrorsTotal,
		SessionEvictTotal,
	)
}

// Outcome maps an error onto the "outcome" label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
