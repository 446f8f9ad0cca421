package service

import "github.com/prometheus/client_golang/prometheus"

var (
	inflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "classifyd",
		Subsystem: "service",
		Name:      "inflight_predictions",
		Help:      "Predictions currently admitted",
	})

	admissionRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classifyd",
		Subsystem: "service",
		Name:      "admission_rejections_total",
		Help:      "Predictions refused before reaching the pipeline",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(inflight, admissionRejections)
}
