// Package metrics exposes Prometheus instrumentation for the daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LinesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printwatch_lines_processed_total",
		Help: "Total raw log lines fed to the grouping engine",
	})
	EntriesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printwatch_entries_emitted_total",
		Help: "Total deduplicated log entries emitted",
	})
	AlertsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printwatch_alerts_created_total",
		Help: "Total alerts created",
	})
	AlertsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "printwatch_alerts_active",
		Help: "Currently active alerts, local alerts included",
	})
	PollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printwatch_poll_errors_total",
		Help: "Total failed printer poll cycles",
	})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printwatch_http_requests_total",
		Help: "Total HTTP API requests by route",
	}, []string{"route"})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
