package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring the two core engines.
var (
	AnalysisRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Total number of product analysis requests received",
		},
	)

	AnalysisFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_failures_total",
			Help: "Total number of analysis requests that exhausted the attempt ladder",
		},
	)

	AnalysisAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_attempts_total",
			Help: "Total number of inference calls issued across all ladder runs",
		},
	)

	AnalysisRefusalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_refusals_total",
			Help: "Total number of inference responses classified as refusals",
		},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Duration of analysis requests including retries",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReceiptVerificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receipt_verifications_total",
			Help: "Total number of receipt verification requests received",
		},
	)

	ReceiptInvalidTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receipt_invalid_total",
			Help: "Total number of receipts that did not yield a valid entitlement",
		},
	)

	ChatRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of assistant chat requests received",
		},
	)
)

// Register registers all Prometheus metrics.
func Register() {
	prometheus.MustRegister(AnalysisRequestsTotal)
	prometheus.MustRegister(AnalysisFailuresTotal)
	prometheus.MustRegister(AnalysisAttemptsTotal)
	prometheus.MustRegister(AnalysisRefusalsTotal)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(ReceiptVerificationsTotal)
	prometheus.MustRegister(ReceiptInvalidTotal)
	prometheus.MustRegister(ChatRequestsTotal)
}
