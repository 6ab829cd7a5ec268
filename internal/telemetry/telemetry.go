// Package telemetry provides OpenTelemetry instrumentation for the
// governance service. It exports Prometheus metrics and a tracer handle.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "governance"

// Metrics holds all governance Prometheus metrics.
type Metrics struct {
	// Ingestion metrics
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram

	// Similarity engine metrics
	SimilarityScanDuration prometheus.Histogram
	CorpusDocsCompared     prometheus.Counter
	DuplicatesDetected     prometheus.Counter

	// Compliance scanner metrics
	ComplianceScanDuration prometheus.Histogram
	ViolationsDetected     *prometheus.CounterVec
	DegradedScans          prometheus.Counter

	// Review queue metrics
	AuditQueueDepth   *prometheus.GaugeVec
	ReviewDecisions   *prometheus.CounterVec
	TransitionsDenied prometheus.Counter

	// Staleness sweep metrics
	StaleFlagged  prometheus.Gauge
	SweepDuration prometheus.Histogram

	// Scan worker backpressure metrics
	ScanQueueDepth prometheus.Gauge
	ScansDropped   prometheus.Counter
	AsyncScans     prometheus.Counter
}

// Provider wraps the tracer and metrics handles. A nil Provider is a
// valid no-op, which keeps tests free of the global Prometheus registry.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initIngestionMetrics(m)
	initSimilarityMetrics(m)
	initComplianceMetrics(m)
	initReviewMetrics(m)
	initStalenessMetrics(m)
	initScanWorkerMetrics(m)
	return m
}

func initIngestionMetrics(m *Metrics) {
	m.SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_submissions_total",
		Help: "Total item submissions by outcome (scanned, duplicate, violation, degraded)",
	}, []string{"outcome"})

	m.SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "governance_submission_duration_seconds",
		Help:    "End-to-end time to scan and record a submission",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	})
}

func initSimilarityMetrics(m *Metrics) {
	m.SimilarityScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "governance_similarity_scan_duration_seconds",
		Help:    "Time spent exact-scoring a candidate against the corpus",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})

	m.CorpusDocsCompared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "governance_corpus_docs_compared_total",
		Help: "Total corpus documents exact-scored across all scans",
	})

	m.DuplicatesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "governance_duplicates_detected_total",
		Help: "Total blocking duplicate matches detected",
	})
}

func initComplianceMetrics(m *Metrics) {
	m.ComplianceScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "governance_compliance_scan_duration_seconds",
		Help:    "Time spent in compliance pattern scanning",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	m.ViolationsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_violations_detected_total",
		Help: "Total compliance violations by detector",
	}, []string{"detector"})

	m.DegradedScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "governance_degraded_scans_total",
		Help: "Compliance scans that fell back to generic checks",
	})
}

func initReviewMetrics(m *Metrics) {
	m.AuditQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "governance_audit_queue_depth",
		Help: "Pending review items by priority tier",
	}, []string{"priority"})

	m.ReviewDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_review_decisions_total",
		Help: "Review decisions processed by outcome",
	}, []string{"decision"})

	m.TransitionsDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "governance_transitions_denied_total",
		Help: "Review transitions rejected as illegal or conflicting",
	})
}

func initStalenessMetrics(m *Metrics) {
	m.StaleFlagged = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "governance_stale_items_flagged",
		Help: "Approved items flagged stale by the last sweep",
	})

	m.SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "governance_stale_sweep_duration_seconds",
		Help:    "Time to run a staleness sweep",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
	})
}

func initScanWorkerMetrics(m *Metrics) {
	m.ScanQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "governance_scan_queue_depth",
		Help: "Pending async submission scans",
	})

	m.ScansDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "governance_scans_dropped_total",
		Help: "Async scans dropped due to queue full",
	})

	m.AsyncScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "governance_async_scans_total",
		Help: "Submissions whose scan was offloaded to the worker",
	})
}

// RecordSubmission records metrics for one submission.
func (p *Provider) RecordSubmission(ctx context.Context, outcome string, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	p.Metrics.SubmissionDuration.Observe(duration.Seconds())
}

// RecordSimilarityScan records similarity engine metrics.
func (p *Provider) RecordSimilarityScan(ctx context.Context, duration time.Duration, compared, duplicates int) {
	if p == nil {
		return
	}
	p.Metrics.SimilarityScanDuration.Observe(duration.Seconds())
	p.Metrics.CorpusDocsCompared.Add(float64(compared))
	p.Metrics.DuplicatesDetected.Add(float64(duplicates))
}

// RecordComplianceScan records compliance scanner metrics.
func (p *Provider) RecordComplianceScan(ctx context.Context, duration time.Duration, detectors []string, degraded bool) {
	if p == nil {
		return
	}
	p.Metrics.ComplianceScanDuration.Observe(duration.Seconds())
	for _, d := range detectors {
		p.Metrics.ViolationsDetected.WithLabelValues(d).Inc()
	}
	if degraded {
		p.Metrics.DegradedScans.Inc()
	}
}

// RecordReviewDecision records a processed review decision.
func (p *Provider) RecordReviewDecision(ctx context.Context, decision string) {
	if p == nil {
		return
	}
	p.Metrics.ReviewDecisions.WithLabelValues(decision).Inc()
}

// RecordTransitionDenied records an illegal or conflicting transition.
func (p *Provider) RecordTransitionDenied(ctx context.Context) {
	if p == nil {
		return
	}
	p.Metrics.TransitionsDenied.Inc()
}

// RecordAuditQueue updates the audit queue depth gauges.
func (p *Provider) RecordAuditQueue(ctx context.Context, high, medium, low int) {
	if p == nil {
		return
	}
	p.Metrics.AuditQueueDepth.WithLabelValues("high").Set(float64(high))
	p.Metrics.AuditQueueDepth.WithLabelValues("medium").Set(float64(medium))
	p.Metrics.AuditQueueDepth.WithLabelValues("low").Set(float64(low))
}

// RecordStaleSweep records a completed staleness sweep.
func (p *Provider) RecordStaleSweep(ctx context.Context, duration time.Duration, flagged int) {
	if p == nil {
		return
	}
	p.Metrics.SweepDuration.Observe(duration.Seconds())
	p.Metrics.StaleFlagged.Set(float64(flagged))
}

// StartSpan starts a tracing span with common service attributes.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	ctx, span := p.Tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}
