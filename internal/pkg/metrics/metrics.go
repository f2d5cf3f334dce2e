package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "schooldesk"

// Submission outcomes recorded by AdmissionsSubmitted
const (
	OutcomeCreated      = "created"
	OutcomeInvalid      = "invalid"
	OutcomeNotApproved  = "not_approved"
	OutcomeConflict     = "conflict"
	OutcomeUploadFailed = "upload_failed"
	OutcomeError        = "error"
)

// Metrics owns a private registry and the collectors the service reports.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	EnquiriesCreated    prometheus.Counter
	AdmissionsSubmitted *prometheus.CounterVec
	DocumentsGenerated  *prometheus.CounterVec
	AttachmentUploads   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		EnquiriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enquiries_created_total",
			Help:      "Enquiries stored.",
		}),
		AdmissionsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_submitted_total",
			Help:      "Admission submissions by outcome.",
		}, []string{"outcome"}),
		DocumentsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_generated_total",
			Help:      "Generated PDF documents by type.",
		}, []string{"type"}),
		AttachmentUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_uploads_total",
			Help:      "Attachment uploads by field and result.",
		}, []string{"field", "result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.EnquiriesCreated,
		m.AdmissionsSubmitted,
		m.DocumentsGenerated,
		m.AttachmentUploads,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler(logger zerolog.Logger) http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		ErrorLog:      promLogger{logger: logger},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// ObserveSubmission counts one admission submission. A nil receiver is a no-op.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.AdmissionsSubmitted.WithLabelValues(outcome).Inc()
}

// ObserveUpload counts one attachment upload.
func (m *Metrics) ObserveUpload(field string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.AttachmentUploads.WithLabelValues(field, result).Inc()
}

// ObserveEnquiry counts one stored enquiry.
func (m *Metrics) ObserveEnquiry() {
	if m == nil {
		return
	}
	m.EnquiriesCreated.Inc()
}

// ObserveDocument counts one rendered document.
func (m *Metrics) ObserveDocument(docType string) {
	if m == nil {
		return
	}
	m.DocumentsGenerated.WithLabelValues(docType).Inc()
}

// promLogger implements promhttp.Logger on top of zerolog.
type promLogger struct {
	logger zerolog.Logger
}

func (l promLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
