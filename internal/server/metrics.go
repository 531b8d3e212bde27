package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters, registered on a private registry so
// tests can create servers without colliding on the global one.
type Metrics struct {
	registry *prometheus.Registry

	classifications      *prometheus.CounterVec
	inputErrors          prometheus.Counter
	sanitizerCorrections prometheus.Counter
	catalogReloads       prometheus.Counter
}

// NewMetrics creates and registers the service counters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_classifications_total",
			Help: "Completed classifications by resolved urgency level.",
		}, []string{"level"}),
		inputErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "triage_input_errors_total",
			Help: "Requests rejected for invalid or oversized input.",
		}),
		sanitizerCorrections: factory.NewCounter(prometheus.CounterOpts{
			Name: "triage_sanitizer_corrections_total",
			Help: "Corrections the output sanitizer applied to composed responses.",
		}),
		catalogReloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "triage_catalog_reloads_total",
			Help: "Successful catalog reloads.",
		}),
	}
}

// IncCatalogReload counts one successful catalog reload, whatever its
// trigger (HTTP endpoint or file watcher).
func (m *Metrics) IncCatalogReload() {
	m.catalogReloads.Inc()
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
