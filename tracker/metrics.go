package tracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the tracking job.
type Metrics struct {
	Registry          *prometheus.Registry
	CyclesTotal       prometheus.Counter
	OrdersTotal       *prometheus.CounterVec
	ObservationsTotal *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	cycles := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_cycles_total",
			Help: "Total tracking cycles started.",
		},
	)
	orders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_orders_total",
			Help: "Total per-order tracking outcomes by result.",
		},
		[]string{"result"},
	)
	observations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_observations_total",
			Help: "Total recorded observations by reason.",
		},
		[]string{"reason"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracker_fetch_duration_seconds",
			Help:    "Latency of the fetch+parse+resolve step per order.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(cycles, orders, observations, fetchDuration)

	return &Metrics{
		Registry:          registry,
		CyclesTotal:       cycles,
		OrdersTotal:       orders,
		ObservationsTotal: observations,
		FetchDuration:     fetchDuration,
	}
}

// IncCycles increments the cycle counter.
func (m *Metrics) IncCycles() {
	if m == nil {
		return
	}
	m.CyclesTotal.Inc()
}

// IncOrders increments the per-order outcome counter for a result label.
func (m *Metrics) IncOrders(result string) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(result).Inc()
}

// IncObservations increments the observation counter for a reason label.
func (m *Metrics) IncObservations(reason string) {
	if m == nil {
		return
	}
	m.ObservationsTotal.WithLabelValues(reason).Inc()
}

// ObserveFetchDuration records one per-order fetch duration.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}
