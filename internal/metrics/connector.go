package metrics

import "github.com/prometheus/client_golang/prometheus"

// Connector Prometheus metrics.
var (
	PageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jsongrid",
			Name:      "pagecache_total",
			Help:      "Chunked page cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jsongrid",
			Name:      "fetch_total",
			Help:      "Outbound JSON fetches by outcome",
		},
		[]string{"result"}, // "ok" / "transport_error" / "invalid_json" / "empty"
	)

	SchemaFieldsDiscovered = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jsongrid",
			Name:      "schema_fields_discovered",
			Help:      "Number of fields discovered per schema request",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250},
		},
	)
)

var connectorMetricsRegistered bool

// RegisterConnectorMetrics registers connector metrics. Must be called once from main.
func RegisterConnectorMetrics() {
	if connectorMetricsRegistered {
		return
	}
	prometheus.MustRegister(PageCacheTotal)
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(SchemaFieldsDiscovered)
	connectorMetricsRegistered = true
}
