package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mtracecli/internal/config"
	"mtracecli/pkg/contracts/domain"
)

// utf8BOM lets Excel recognise UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer. Relative file paths are resolved
// against paths.OutputDir; a nil paths leaves them relative to the working
// directory.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSimpleCSV writes a simple CSV file with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	slog.Info("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// RecordHeaders returns the canonical field names in declaration order.
func RecordHeaders() []string {
	fields := domain.AllFields()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.String()
	}
	return headers
}

// WriteRecordsCSV streams the normalized records, one column per canonical
// field.
func (w *CSVWriter) WriteRecordsCSV(filePath string, payload domain.ExportPayload) error {
	headers := RecordHeaders()
	stream, err := w.CreateStreamWriter(filePath, headers)
	if err != nil {
		return err
	}

	row := make([]string, len(headers))
	for i, rec := range payload.Records {
		for j, h := range headers {
			row[j] = rec[h]
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}

// EventHeaders are the columns of the events CSV.
var EventHeaders = []string{
	"type", "recordIndex", "dateTime", "sender", "recipient", "subject",
	"id", "name", "matched", "elapsedMs", "detail",
}

// WriteEventsCSV writes one row per compliance event.
func (w *CSVWriter) WriteEventsCSV(filePath string, payload domain.ExportPayload) error {
	rows := make([][]string, len(payload.Events))
	for i, env := range payload.Events {
		rows[i] = eventRow(env)
	}
	return w.WriteSimpleCSV(filePath, EventHeaders, rows)
}

func eventRow(env domain.EventEnvelope) []string {
	var id, name, matched, elapsed, detail string

	switch ev := env.Event.(type) {
	case *domain.PolicyRuleEvaluation:
		id = ev.RuleID
		name = ev.PolicyID
		matched = formatBool(ev.Matched)
		elapsed = formatInt(int64(ev.ElapsedMs()))
		detail = "actions=" + timingNames(ev.Actions) + " predicates=" + timingNames(ev.Predicates)
	case *domain.ContentClassification:
		id = ev.RuleID
		name = string(ev.Classification)
		elapsed = formatInt(int64(ev.ElapsedMs))
		parts := []string{ev.PredicateSummary}
		if ev.Confidence != nil {
			parts = append(parts, "confidence="+formatInt(int64(*ev.Confidence)))
		}
		if ev.Severity != "" {
			parts = append(parts, "severity="+ev.Severity)
		}
		detail = strings.Join(parts, " ")
	case *domain.SensitivityLabelApplication:
		id = ev.LabelID
		name = ev.LabelName
		if ev.ContentBits != nil {
			detail = strings.Join(ev.ContentBits.Treatments(), ";")
		}
	}

	return []string{
		string(env.Type),
		formatInt(int64(env.RecordIndex)),
		env.DateTime,
		env.Sender,
		env.Recipient,
		env.Subject,
		id,
		name,
		matched,
		elapsed,
		detail,
	}
}

func timingNames(timings []domain.Timing) string {
	names := make([]string, len(timings))
	for i, t := range timings {
		names[i] = t.Name
	}
	return strings.Join(names, ";")
}

// resolvePath resolves a relative path against the output directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil || w.paths.OutputDir == "" {
		return filePath
	}
	return filepath.Join(w.paths.OutputDir, filePath)
}
