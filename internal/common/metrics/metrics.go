// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CertificatesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificates_generated_total",
			Help: "Total number of certificate PDFs generated",
		},
		[]string{"certificate_type"},
	)

	CertificatesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificates_sent_total",
			Help: "Total number of certificates delivered by email",
		},
		[]string{"certificate_type"},
	)

	CertificatesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificates_failed_total",
			Help: "Total number of certificate deliveries that failed",
		},
		[]string{"certificate_type", "error_code"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "certificate_pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	BulkRunsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "certificate_bulk_runs_active",
			Help: "Number of bulk delivery runs currently in progress",
		},
		[]string{"trigger"},
	)
)
