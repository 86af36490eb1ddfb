package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rentease"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	storeMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Entity store mutations by entity and operation.",
		},
		[]string{"entity", "op"},
	)

	exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Table exports by format.",
		},
		[]string{"format"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions created minus sessions ended by logout.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, storeMutations, exports, activeSessions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncMutation counts a store mutation such as ("booking", "create").
func IncMutation(entity, op string) {
	storeMutations.WithLabelValues(entity, op).Inc()
}

// IncExport counts a generated export file.
func IncExport(format string) {
	exports.WithLabelValues(format).Inc()
}

func SessionStarted() { activeSessions.Inc() }

func SessionEnded() { activeSessions.Dec() }
