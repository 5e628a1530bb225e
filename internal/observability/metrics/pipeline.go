package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics tracks one ingestion run. Document outcome labels:
// "extracted" when the model produced usable facts, "fallback" when the
// result came from manifest metadata. Registrations dropped at store
// time count under the skipped counter by reason.
type PipelineMetrics struct {
	registry *prometheus.Registry

	documentsTotal       *prometheus.CounterVec
	fallbacksTotal       *prometheus.CounterVec
	registrationsStored  *prometheus.CounterVec
	registrationsSkipped *prometheus.CounterVec
	downloadsTotal       *prometheus.CounterVec
	unrecognizedPeriods  prometheus.Counter
	processDuration      prometheus.Histogram
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fara",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Documents processed by outcome.",
		},
		[]string{"outcome"},
	)
	fallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fara",
			Subsystem: "pipeline",
			Name:      "extraction_fallbacks_total",
			Help:      "Metadata-only fallback results by reason.",
		},
		[]string{"reason"},
	)
	registrationsStored := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fara",
			Subsystem: "pipeline",
			Name:      "registrations_stored_total",
			Help:      "Registrations written to the store by operation.",
		},
		[]string{"operation"},
	)
	registrationsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fara",
			Subsystem: "pipeline",
			Name:      "registrations_skipped_total",
			Help:      "Registrations dropped before storage by reason.",
		},
		[]string{"reason"},
	)
	downloadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fara",
			Subsystem: "pipeline",
			Name:      "document_downloads_total",
			Help:      "Document fetch attempts by result.",
		},
		[]string{"result"},
	)
	unrecognizedPeriods := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fara",
			Subsystem: "pipeline",
			Name:      "compensation_period_unrecognized_total",
			Help:      "Compensation entries whose period could not be annualized and contributed zero.",
		},
	)
	processDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fara",
			Subsystem: "pipeline",
			Name:      "document_process_duration_seconds",
			Help:      "Per-document processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	registry.MustRegister(documentsTotal, fallbacksTotal, registrationsStored, registrationsSkipped, downloadsTotal, unrecognizedPeriods, processDuration)

	return &PipelineMetrics{
		registry:             registry,
		documentsTotal:       documentsTotal,
		fallbacksTotal:       fallbacksTotal,
		registrationsStored:  registrationsStored,
		registrationsSkipped: registrationsSkipped,
		downloadsTotal:       downloadsTotal,
		unrecognizedPeriods:  unrecognizedPeriods,
		processDuration:      processDuration,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) ObserveDocument(outcome string, duration time.Duration) {
	m.documentsTotal.WithLabelValues(outcome).Inc()
	m.processDuration.Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveFallback(reason string) {
	m.fallbacksTotal.WithLabelValues(reason).Inc()
}

func (m *PipelineMetrics) ObserveStored(created bool) {
	operation := "update"
	if created {
		operation = "insert"
	}
	m.registrationsStored.WithLabelValues(operation).Inc()
}

func (m *PipelineMetrics) ObserveSkipped(reason string) {
	m.registrationsSkipped.WithLabelValues(reason).Inc()
}

func (m *PipelineMetrics) ObserveDownload(result string) {
	m.downloadsTotal.WithLabelValues(result).Inc()
}

func (m *PipelineMetrics) ObserveUnrecognizedPeriods(n int) {
	if n <= 0 {
		return
	}
	m.unrecognizedPeriods.Add(float64(n))
}
