package telemetry

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcome labels
const (
	OutcomeStored   = "stored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeReplayed = "replayed"
)

// UploadMetrics holds the Prometheus collectors for the upload endpoints
type UploadMetrics struct {
	registry    *prometheus.Registry
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Histogram
}

// NewUploadMetrics registers the upload collectors on a fresh registry,
// so several apps can live in one process (tests).
func NewUploadMetrics() *UploadMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &UploadMetrics{
		registry: registry,
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileupload",
			Name:      "uploads_total",
			Help:      "Upload requests by outcome",
		}, []string{"outcome"}),
		uploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fileupload",
			Name:      "upload_bytes",
			Help:      "Size of stored uploads in bytes",
			Buckets:   []float64{1024, 10240, 102400, 1048576, 5242880, 10485760}, // 1KB to 10MB
		}),
	}
}

// Observe records one upload outcome. size is only recorded for stored files.
func (m *UploadMetrics) Observe(outcome string, size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
	if outcome == OutcomeStored {
		m.uploadBytes.Observe(float64(size))
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *UploadMetrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
