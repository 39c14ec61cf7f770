package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mtracecli/internal/config"
	"mtracecli/internal/dataprocessing"
	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/exporter"
	"mtracecli/internal/services"
	"mtracecli/internal/validation"
)

type analyzeOptions struct {
	input       string
	outputDir   string
	formats     []string
	topN        int
	timezone    string
	workers     int
	noEvents    bool
	noTimelines bool
}

func newAnalyzeCmd(e *env) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a message trace export",
		Long: `Analyze reads a message trace export (.csv or .xlsx), resolves its columns,
decodes every compliance annotation and aggregates statistics. One artifact
is written per requested format into the output directory.

Input that cannot be read at all fails the command with exit code 1.`,
		Example: `  mtrace analyze --in trace.csv
  mtrace analyze --in trace.xlsx --out reports --format json,xlsx --top 25`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, e, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "in", "i", "", "message trace export to analyze (.csv or .xlsx)")
	cmd.Flags().StringVarP(&opts.outputDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{config.FormatJSON}, "export formats: json, csv, xlsx")
	cmd.Flags().IntVar(&opts.topN, "top", 0, "number of entries in top-N lists (default from config)")
	cmd.Flags().StringVar(&opts.timezone, "tz", "", "IANA time zone for the hourly histogram (default from config)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "normalization workers (default from config)")
	cmd.Flags().BoolVar(&opts.noEvents, "no-events", false, "omit the flattened event list from the export")
	cmd.Flags().BoolVar(&opts.noTimelines, "no-timelines", false, "omit per-message timelines from the export")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runAnalyze(cmd *cobra.Command, e *env, opts analyzeOptions) error {
	formats, err := normalizeFormats(opts.formats)
	if err != nil {
		return err
	}

	cfg := *e.cfg
	if opts.outputDir != "" {
		cfg.Paths.OutputDir = opts.outputDir
	}
	if opts.workers > 0 {
		cfg.Analysis.Workers = opts.workers
	}

	paths, err := config.ResolvePaths(cfg.Paths, "")
	if err != nil {
		return apperrors.NewConfigError("resolve paths", err)
	}

	validator := validation.NewFileValidator(e.logger)
	if err := validator.ValidateInputFile(opts.input, dataprocessing.InputExtensions...); err != nil {
		return err
	}

	svc, err := services.NewAnalysisService(cfg.Analysis, nil, e.logger)
	if err != nil {
		return err
	}

	overrides := services.AnalysisRequest{
		TopN:     opts.topN,
		Timezone: opts.timezone,
	}
	if opts.noEvents {
		overrides.IncludeEvents = boolPtr(false)
	}
	if opts.noTimelines {
		overrides.IncludeTimelines = boolPtr(false)
	}

	analysis, err := svc.AnalyzeFile(cmd.Context(), opts.input, overrides)
	if err != nil {
		return err
	}

	if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		return err
	}

	written, err := writeExports(paths, analysis, formats)
	if err != nil {
		return err
	}

	e.logger.Info("Analysis exported",
		slog.String("run_id", analysis.Result.RunID),
		slog.Int("records", len(analysis.Result.Records)),
		slog.Int("events", len(analysis.Result.Events)),
		slog.Int("files", len(written)))

	printSummary(cmd.OutOrStdout(), analysis, written)
	return nil
}

// normalizeFormats lower-cases, de-duplicates and validates --format values.
func normalizeFormats(raw []string) ([]string, error) {
	var formats []string
	for _, f := range raw {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(formats, f) {
			continue
		}
		if !slices.Contains(config.ExportFormats, f) {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("unsupported export format %q (want one of %s)", f, strings.Join(config.ExportFormats, ", ")))
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return nil, apperrors.NewAppValidationError("at least one export format is required")
	}
	return formats, nil
}

// writeExports writes one artifact per format and returns the paths written.
// CSV produces a records file plus an events file next to it.
func writeExports(paths *config.Paths, analysis *services.Analysis, formats []string) ([]string, error) {
	res := analysis.Result
	var written []string

	for _, format := range formats {
		path := paths.OutputFile(res.Source, res.RunID, format)
		switch format {
		case config.FormatJSON:
			if err := exporter.WriteJSON(path, analysis.Payload); err != nil {
				return written, fmt.Errorf("write json export: %w", err)
			}
			written = append(written, path)
		case config.FormatCSV:
			w := exporter.NewCSVWriter(paths)
			if err := w.WriteRecordsCSV(path, analysis.Payload); err != nil {
				return written, fmt.Errorf("write records csv: %w", err)
			}
			written = append(written, path)

			eventsPath := strings.TrimSuffix(path, ".csv") + "-events.csv"
			if err := w.WriteEventsCSV(eventsPath, analysis.Payload); err != nil {
				return written, fmt.Errorf("write events csv: %w", err)
			}
			written = append(written, eventsPath)
		case config.FormatXLSX:
			if err := exporter.WriteWorkbook(path, analysis.Payload); err != nil {
				return written, fmt.Errorf("write workbook: %w", err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func printSummary(w io.Writer, analysis *services.Analysis, written []string) {
	res := analysis.Result
	stats := res.Statistics

	fmt.Fprintf(w, "Run %s (%s) in %s\n", res.RunID, res.Source, res.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  records:           %d\n", stats.TotalRecords)
	fmt.Fprintf(w, "  unique messages:   %d\n", stats.UniqueMessages)
	fmt.Fprintf(w, "  unique senders:    %d\n", stats.UniqueSenders)
	fmt.Fprintf(w, "  compliance events: %d\n", len(res.Events))
	if len(stats.TopSenders) > 0 {
		top := stats.TopSenders[0]
		fmt.Fprintf(w, "  top sender:        %s (%d)\n", top.Key, top.Count)
	}
	for _, p := range written {
		fmt.Fprintf(w, "wrote %s\n", p)
	}
}

func boolPtr(b bool) *bool { return &b }
