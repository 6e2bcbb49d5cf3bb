package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and personalization metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Collection queries by collection and mode",
		},
		[]string{"collection", "mode"}, // mode: knn/list
	)

	DroppedFiltersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_filters_total",
			Help:      "Request filters ignored during coercion",
		},
		[]string{"collection", "reason"},
	)

	IndexedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexed_documents_total",
			Help:      "Documents written per collection",
		},
		[]string{"collection"},
	)

	ScoringDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Personalized scoring duration per batch",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"category", "personalized"},
	)

	InteractionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Interaction events folded into preference profiles",
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval and scoring metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(DroppedFiltersTotal)
	prometheus.MustRegister(IndexedDocumentsTotal)
	prometheus.MustRegister(ScoringDuration)
	prometheus.MustRegister(InteractionsTotal)
	retrievalMetricsRegistered = true
}
