package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"mtracecli/internal/compliance"
	"mtracecli/internal/config"
	"mtracecli/internal/dataprocessing"
	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/exporter"
	"mtracecli/internal/infrastructure"
	"mtracecli/pkg/contracts/domain"
)

// Input formats accepted by Analyze.
const (
	InputCSV  = "csv"
	InputXLSX = "xlsx"
)

// AnalysisRequest describes one uploaded batch. Zero-valued overrides fall
// back to the service configuration.
type AnalysisRequest struct {
	Source string
	Format string
	Body   io.Reader

	TopN             int
	Timezone         string
	IncludeEvents    *bool
	IncludeTimelines *bool
}

// Analysis is the outcome of one batch: the raw pipeline result and the
// assembled export payload.
type Analysis struct {
	Result  *dataprocessing.Result
	Payload domain.ExportPayload
}

// SkippedSection is a grammar section the decoder dropped.
type SkippedSection struct {
	Section string                `json:"section"`
	Reason  compliance.SkipReason `json:"reason"`
}

// DecodeResult is the outcome of decoding a single blob.
type DecodeResult struct {
	Events  []domain.ComplianceEvent `json:"events"`
	Skipped []SkippedSection         `json:"skipped"`
}

// AnalysisService runs uploaded or on-disk batches through the pipeline.
type AnalysisService struct {
	cfg     config.AnalysisConfig
	catalog domain.FieldCatalog
	metrics *infrastructure.AnalysisMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewAnalysisService creates the service, loading the configured field
// catalog override if any. metrics may be nil.
func NewAnalysisService(cfg config.AnalysisConfig, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	catalog, err := dataprocessing.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return nil, apperrors.NewConfigError("load field catalog", err)
	}

	logger.Info("AnalysisService initialized",
		slog.Int("workers", cfg.Workers),
		slog.Int("top_n", cfg.TopN),
		slog.String("timezone", cfg.Timezone),
		slog.String("catalog_file", cfg.CatalogFile))

	return &AnalysisService{
		cfg:     cfg,
		catalog: catalog,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "analysis_service"),
		now:     time.Now,
	}, nil
}

// Analyze ingests req.Body and runs the full pipeline over it. Ingestion
// failures reject the whole batch.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error) {
	format := strings.ToLower(req.Format)
	if format == "" {
		format = InputCSV
	}

	var (
		ds  *dataprocessing.Dataset
		err error
	)
	switch format {
	case InputCSV:
		ds, err = dataprocessing.ReadCSV(req.Body, req.Source)
	case InputXLSX:
		ds, err = dataprocessing.ReadWorkbookFrom(req.Body, req.Source)
	default:
		err = apperrors.NewIngestionError("read input", dataprocessing.ErrUnsupportedFormat).
			WithContext("format", req.Format)
	}
	if err != nil {
		return nil, s.ingestionFailed(ctx, format, req.Source, err)
	}

	return s.run(ctx, ds, req)
}

// AnalyzeFile is Analyze over a file on disk; the extension selects the
// reader.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, overrides AnalysisRequest) (*Analysis, error) {
	ds, err := dataprocessing.ReadFile(path)
	if err != nil {
		format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		return nil, s.ingestionFailed(ctx, format, path, err)
	}
	return s.run(ctx, ds, overrides)
}

// Decode decodes a single grammar blob outside of any batch.
func (s *AnalysisService) Decode(ctx context.Context, blob string) DecodeResult {
	res := DecodeResult{Skipped: make([]SkippedSection, 0)}
	dec := compliance.NewDecoder(compliance.WithSkipHook(func(section string, reason compliance.SkipReason) {
		res.Skipped = append(res.Skipped, SkippedSection{Section: section, Reason: reason})
	}))
	res.Events = dec.DecodeRecord(domain.NoRecord, blob)

	s.logger.DebugContext(ctx, "blob decoded",
		slog.Int("events", len(res.Events)),
		slog.Int("skipped", len(res.Skipped)))
	return res
}

func (s *AnalysisService) run(ctx context.Context, ds *dataprocessing.Dataset, req AnalysisRequest) (*Analysis, error) {
	pcfg, err := s.pipelineConfig(req)
	if err != nil {
		return nil, err
	}

	result, err := dataprocessing.NewPipeline(s.logger, pcfg, s.metrics).Run(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", ds.Source, err)
	}

	payload := exporter.Assemble(result, exporter.AssembleOptions{
		Format:           config.FormatJSON,
		IncludeEvents:    boolOr(req.IncludeEvents, s.cfg.IncludeEvents),
		IncludeTimelines: pcfg.IncludeTimelines,
		GeneratedAt:      s.now(),
	})

	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("run_id", result.RunID),
		slog.String("source", result.Source),
		slog.Int("records", len(result.Records)),
		slog.Int("events", len(result.Events)),
		slog.Duration("duration", result.Duration))

	return &Analysis{Result: result, Payload: payload}, nil
}

func (s *AnalysisService) pipelineConfig(req AnalysisRequest) (dataprocessing.PipelineConfig, error) {
	pcfg := dataprocessing.PipelineConfig{
		Workers:          s.cfg.Workers,
		ChunkSize:        s.cfg.ChunkSize,
		TopN:             s.cfg.TopN,
		Location:         s.cfg.Location(),
		IncludeTimelines: boolOr(req.IncludeTimelines, s.cfg.IncludeTimelines),
		Catalog:          s.catalog,
	}
	if req.TopN > 0 {
		pcfg.TopN = req.TopN
	}
	if req.Timezone != "" {
		loc, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return pcfg, apperrors.NewAppValidationError(fmt.Sprintf("unknown time zone %q", req.Timezone))
		}
		pcfg.Location = loc
	}
	return pcfg, nil
}

func (s *AnalysisService) ingestionFailed(ctx context.Context, format, source string, err error) error {
	s.metrics.RecordIngestionFailure(ctx, format)
	s.logger.WarnContext(ctx, "ingestion failed",
		slog.String("source", source),
		slog.String("format", format),
		slog.String("error", err.Error()))

	if apperrors.IsType(err, apperrors.ErrTypeIngestion) {
		return err
	}
	return apperrors.NewIngestionError("read input", err).WithContext("source", source)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
