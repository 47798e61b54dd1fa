package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects lifecycle and reconciler counters.
type Metrics struct {
	registry *prometheus.Registry

	Transitions *prometheus.CounterVec
	SweepOrders *prometheus.CounterVec
	SweepErrors prometheus.Counter
}

// New builds a metrics set backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promopay",
		Name:      "order_transitions_total",
		Help:      "Committed order lifecycle transitions.",
	}, []string{"action"})
	sweepOrders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promopay",
		Name:      "reconciler_orders_total",
		Help:      "Orders handled by the timeout reconciler.",
	}, []string{"outcome"})
	sweepErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "promopay",
		Name:      "reconciler_errors_total",
		Help:      "Reconciler sweep failures requiring attention.",
	})

	registry.MustRegister(transitions, sweepOrders, sweepErrors)
	return &Metrics{
		registry:    registry,
		Transitions: transitions,
		SweepOrders: sweepOrders,
		SweepErrors: sweepErrors,
	}
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
