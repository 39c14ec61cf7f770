package infrastructure

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AnalysisMetrics holds the instruments of the analysis pipeline and the
// HTTP surface. A nil *AnalysisMetrics is valid and records nothing.
type AnalysisMetrics struct {
	// Pipeline metrics
	RunsTotal         metric.Int64Counter
	RunDuration       metric.Float64Histogram
	RecordsProcessed  metric.Int64Counter
	EventsDecoded     metric.Int64Counter
	SectionsSkipped   metric.Int64Counter
	IngestionFailures metric.Int64Counter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// NewAnalysisMetrics creates the instruments on meter.
func NewAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	m := &AnalysisMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter(
		"mtrace_analysis_runs_total",
		metric.WithDescription("Total number of analysis runs"),
	); err != nil {
		return nil, err
	}

	if m.RunDuration, err = meter.Float64Histogram(
		"mtrace_analysis_run_duration_seconds",
		metric.WithDescription("Analysis run duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.RecordsProcessed, err = meter.Int64Counter(
		"mtrace_records_processed_total",
		metric.WithDescription("Total number of normalized records"),
	); err != nil {
		return nil, err
	}

	if m.EventsDecoded, err = meter.Int64Counter(
		"mtrace_compliance_events_total",
		metric.WithDescription("Total number of decoded compliance events"),
	); err != nil {
		return nil, err
	}

	if m.SectionsSkipped, err = meter.Int64Counter(
		"mtrace_sections_skipped_total",
		metric.WithDescription("Total number of annotation sections skipped by the decoder"),
	); err != nil {
		return nil, err
	}

	if m.IngestionFailures, err = meter.Int64Counter(
		"mtrace_ingestion_failures_total",
		metric.WithDescription("Total number of inputs that could not be read"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun records one finished analysis run.
func (m *AnalysisMetrics) RecordRun(ctx context.Context, success bool, duration time.Duration, records int) {
	if m == nil {
		return
	}

	status := attribute.String("status", "success")
	if !success {
		status = attribute.String("status", "failure")
	}
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(status))
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(status))
	if records > 0 {
		m.RecordsProcessed.Add(ctx, int64(records))
	}
}

// RecordEvents adds decoded event counts keyed by event kind.
func (m *AnalysisMetrics) RecordEvents(ctx context.Context, byKind map[string]int) {
	if m == nil {
		return
	}
	for kind, n := range byKind {
		m.EventsDecoded.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordSkipped adds skipped section counts keyed by reason.
func (m *AnalysisMetrics) RecordSkipped(ctx context.Context, byReason map[string]int) {
	if m == nil {
		return
	}
	for reason, n := range byReason {
		m.SectionsSkipped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// RecordIngestionFailure counts an input that could not be read.
func (m *AnalysisMetrics) RecordIngestionFailure(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.IngestionFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordHTTPRequest records one served request.
func (m *AnalysisMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackActiveRequest adjusts the in-flight request gauge by delta.
func (m *AnalysisMetrics) TrackActiveRequest(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}
