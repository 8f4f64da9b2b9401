package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and bucket Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playsearch",
			Name:      "search_requests_total",
			Help:      "Total number of semantic search requests",
		},
		[]string{"status"}, // "success" / "validation_error" / "upstream_error"
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "playsearch",
			Name:      "search_results_returned",
			Help:      "Number of results returned per search after thresholding",
			Buckets:   []float64{0, 1, 3, 5, 10, 25, 50, 100},
		},
	)

	BucketRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playsearch",
			Name:      "bucket_runs_total",
			Help:      "Total number of bucket generation runs",
		},
		[]string{"status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search Prometheus metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(BucketRunsTotal)
	searchMetricsRegistered = true
}
