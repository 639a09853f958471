// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConfigsLoaded tracks the number of named configs currently held.
	ConfigsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "themeplane_configs_loaded",
		Help: "Number of theme configs currently loaded",
	})

	// ValidationProblems counts problems found by kind and severity.
	ValidationProblems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themeplane_validation_problems_total",
		Help: "Validation problems found by kind and severity",
	}, []string{"kind", "severity"})

	// RevisionsSaved counts stored config revisions.
	RevisionsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "themeplane_revisions_saved_total",
		Help: "Total config revisions saved",
	})

	// RevisionsPruned counts revisions removed by retention.
	RevisionsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "themeplane_revisions_pruned_total",
		Help: "Total config revisions removed by retention",
	})

	// HTTPRequests counts API requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themeplane_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
