package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// PredictRequestsTotal counts /predict requests by outcome.
	PredictRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plantapi",
		Subsystem: "predict",
		Name:      "requests_total",
		Help:      "Total number of /predict requests, labeled by result (ok, bad_input, model_error, bad_reply, error).",
	}, []string{"result"})

	// PredictDurationSeconds is end-to-end time per /predict request.
	PredictDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "plantapi",
		Subsystem: "predict",
		Name:      "duration_seconds",
		Help:      "End-to-end time to serve a /predict request, including the outbound model call.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"result"})

	// ModelCallDurationSeconds is the time spent in the outbound model call.
	ModelCallDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "plantapi",
		Subsystem: "predict",
		Name:      "model_call_duration_seconds",
		Help:      "Time spent calling the external multimodal model, labeled by provider.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"provider"})

	// ModelCallErrorsTotal counts failed outbound model calls.
	ModelCallErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plantapi",
		Subsystem: "predict",
		Name:      "model_call_errors_total",
		Help:      "Total number of failed outbound model calls, labeled by provider.",
	}, []string{"provider"})

	// UploadBytes is the size distribution of accepted uploads.
	UploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plantapi",
		Subsystem: "predict",
		Name:      "upload_bytes",
		Help:      "Size in bytes of accepted image uploads.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			PredictRequestsTotal,
			PredictDurationSeconds,
			ModelCallDurationSeconds,
			ModelCallErrorsTotal,
			UploadBytes,
		)
	})
}
