package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "pipeline",
			Name:      "rejections_total",
			Help:      "Uploads rejected by validation, by rule",
		},
		[]string{"rule"},
	)

	preprocessTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "pipeline",
			Name:      "preprocess_total",
			Help:      "Uploads that reached preprocessing",
		},
	)

	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "pipeline",
			Name:      "failures_total",
			Help:      "Pipeline failures after validation, by kind",
		},
		[]string{"kind"},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "pipeline",
			Name:      "predictions_total",
			Help:      "Successful predictions, by reported label",
		},
		[]string{"label"},
	)

	lowConfidenceTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "pipeline",
			Name:      "low_confidence_total",
			Help:      "Predictions whose label was replaced by the low-confidence sentinel",
		},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "classifyd",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(rejectionsTotal, preprocessTotal, failuresTotal, predictionsTotal, lowConfidenceTotal, stageDuration)
}
