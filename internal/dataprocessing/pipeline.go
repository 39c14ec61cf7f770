package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mtracecli/internal/analytics"
	"mtracecli/internal/compliance"
	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/infrastructure"
	"mtracecli/pkg/contracts/domain"
)

const (
	defaultWorkers   = 4
	defaultChunkSize = 512
)

// PipelineConfig tunes a Pipeline. Zero values fall back to defaults.
type PipelineConfig struct {
	// Workers bounds the goroutines normalizing and decoding chunks.
	Workers int
	// ChunkSize is the number of rows one worker handles at a time.
	ChunkSize int
	// TopN and Location are passed to the aggregators.
	TopN     int
	Location *time.Location
	// IncludeTimelines enables per-message timelines in the result.
	IncludeTimelines bool
	// Catalog overrides DefaultCatalog.
	Catalog domain.FieldCatalog
}

// Diagnostics reports the anomalies a run absorbed.
type Diagnostics struct {
	SkippedSections   map[compliance.SkipReason]int `json:"skippedSections"`
	EventsByKind      map[domain.EventKind]int      `json:"eventsByKind"`
	MissingFields     []string                      `json:"missingFields"`
	RecordsWithEvents int                           `json:"recordsWithEvents"`
}

// Result is the complete output of one run.
type Result struct {
	RunID       string
	Source      string
	Mapping     domain.ResolvedMapping
	Records     []domain.NormalizedRecord
	Events      []domain.ComplianceEvent
	Statistics  domain.StatisticsBundle
	Compliance  domain.ComplianceSummary
	Timelines   []domain.MessageTimeline
	Diagnostics Diagnostics
	Duration    time.Duration
}

// Pipeline runs resolve, normalize, decode and aggregate over a dataset.
// A Pipeline is safe for concurrent use; every Run is independent.
type Pipeline struct {
	logger  *slog.Logger
	cfg     PipelineConfig
	metrics *infrastructure.AnalysisMetrics
	tracer  trace.Tracer
}

// NewPipeline creates a pipeline. logger and metrics may be nil.
func NewPipeline(logger *slog.Logger, cfg PipelineConfig, metrics *infrastructure.AnalysisMetrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = DefaultCatalog()
	}
	return &Pipeline{
		logger:  infrastructure.WithComponent(logger, "pipeline"),
		cfg:     cfg,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.InstrumentationName),
	}
}

// Run processes ds. Per-row and per-section anomalies are absorbed and
// reported in Result.Diagnostics; only a missing dataset or a cancelled
// context fails the run, and then no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, ds *Dataset) (*Result, error) {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	if ds == nil {
		err := apperrors.NewIngestionError("run pipeline", ErrEmptyInput)
		infrastructure.RecordError(ctx, err)
		p.metrics.RecordRun(ctx, false, time.Since(start), 0)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("source", ds.Source),
		attribute.Int("rows", len(ds.Rows)),
	)

	mapping := ResolveHeader(ds.Header, p.cfg.Catalog)
	p.logger.DebugContext(ctx, "header resolved",
		slog.String("source", ds.Source),
		slog.Int("present", mapping.PresentCount()),
		slog.Int("missing", len(mapping.Missing())))

	records, perRecord, skipped, err := p.normalizeAndDecode(ctx, ds.Rows, mapping)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.metrics.RecordRun(ctx, false, time.Since(start), 0)
		return nil, fmt.Errorf("normalize and decode: %w", err)
	}

	events := make([]domain.ComplianceEvent, 0)
	withEvents := 0
	byKind := make(map[domain.EventKind]int)
	for _, evs := range perRecord {
		if len(evs) > 0 {
			withEvents++
		}
		for _, ev := range evs {
			byKind[ev.Kind()]++
		}
		events = append(events, evs...)
	}

	_, aggSpan := p.tracer.Start(ctx, "pipeline.aggregate")
	opts := analytics.Options{TopN: p.cfg.TopN, Location: p.cfg.Location}
	res := &Result{
		RunID:      uuid.New().String(),
		Source:     ds.Source,
		Mapping:    mapping,
		Records:    records,
		Events:     events,
		Statistics: analytics.Aggregate(records, opts),
		Compliance: analytics.SummarizeCompliance(events, opts),
		Timelines:  make([]domain.MessageTimeline, 0),
	}
	if p.cfg.IncludeTimelines {
		res.Timelines = analytics.BuildTimelines(records, opts)
	}
	aggSpan.End()

	missing := mapping.Missing()
	res.Diagnostics = Diagnostics{
		SkippedSections:   skipped,
		EventsByKind:      byKind,
		MissingFields:     make([]string, len(missing)),
		RecordsWithEvents: withEvents,
	}
	for i, f := range missing {
		res.Diagnostics.MissingFields[i] = f.String()
	}
	res.Duration = time.Since(start)

	p.recordMetrics(ctx, res)
	span.SetAttributes(
		attribute.String("run_id", res.RunID),
		attribute.Int("records", len(records)),
		attribute.Int("events", len(events)),
	)
	p.logger.InfoContext(ctx, "analysis complete",
		slog.String("run_id", res.RunID),
		slog.String("source", ds.Source),
		slog.Int("records", len(records)),
		slog.Int("events", len(events)),
		slog.Int("skipped_sections", sumCounts(skipped)),
		slog.Duration("duration", res.Duration))

	return res, nil
}

// normalizeAndDecode fans the rows out in chunks. Every chunk writes only its
// own slots of the pre-sized outputs, so input order survives.
func (p *Pipeline) normalizeAndDecode(ctx context.Context, rows []domain.RawRow, mapping domain.ResolvedMapping) ([]domain.NormalizedRecord, [][]domain.ComplianceEvent, map[compliance.SkipReason]int, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.normalize_decode")
	defer span.End()

	records := make([]domain.NormalizedRecord, len(rows))
	perRecord := make([][]domain.ComplianceEvent, len(rows))
	skipped := make(map[compliance.SkipReason]int)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for lo := 0; lo < len(rows); lo += p.cfg.ChunkSize {
		hi := min(lo+p.cfg.ChunkSize, len(rows))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			local := make(map[compliance.SkipReason]int)
			decoder := compliance.NewDecoder(compliance.WithSkipHook(func(_ string, reason compliance.SkipReason) {
				local[reason]++
			}))

			for i := lo; i < hi; i++ {
				rec := Normalize(i, rows[i], mapping)
				records[i] = rec
				perRecord[i] = decoder.DecodeRecord(i, rec.Value(domain.FieldAnnotationBlob))
			}

			mu.Lock()
			for reason, n := range local {
				skipped[reason] += n
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return records, perRecord, skipped, nil
}

func (p *Pipeline) recordMetrics(ctx context.Context, res *Result) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordRun(ctx, true, res.Duration, len(res.Records))

	kinds := make(map[string]int, len(res.Diagnostics.EventsByKind))
	for k, n := range res.Diagnostics.EventsByKind {
		kinds[string(k)] = n
	}
	p.metrics.RecordEvents(ctx, kinds)

	reasons := make(map[string]int, len(res.Diagnostics.SkippedSections))
	for r, n := range res.Diagnostics.SkippedSections {
		reasons[string(r)] = n
	}
	p.metrics.RecordSkipped(ctx, reasons)
}

func sumCounts[K comparable](m map[K]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}
