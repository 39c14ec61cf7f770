package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	apperrors "mtracecli/internal/errors"
	"mtracecli/pkg/contracts/domain"
)

var (
	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("input contains no header row")
	// ErrUnsupportedFormat is returned for file extensions ReadFile cannot dispatch.
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// InputExtensions lists the file extensions ReadFile accepts.
var InputExtensions = []string{".csv", ".txt", ".tsv", ".xlsx", ".xlsm"}

// Dataset is one decoded input batch.
type Dataset struct {
	Source string
	Header []string
	Rows   []domain.RawRow
}

// ReadFile reads a message trace export, dispatching on the extension.
// Every failure is an ingestion error: nothing of the file is usable.
func ReadFile(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewIngestionError("open input", err).WithContext("source", path)
		}
		defer f.Close()
		return ReadCSV(f, path)
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path)
	default:
		return nil, apperrors.NewIngestionError("read input", ErrUnsupportedFormat).WithContext("source", path)
	}
}

// ReadCSV decodes a delimited export. A UTF-8 or UTF-16 byte order mark
// selects the encoding, UTF-8 otherwise. The delimiter (comma, tab or
// semicolon) is sniffed from the header line. Ragged rows are accepted;
// a row shorter than the header lacks the trailing keys.
func ReadCSV(r io.Reader, source string) (*Dataset, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	buffered := bufio.NewReaderSize(decoded, 64*1024)

	head, err := buffered.Peek(buffered.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, apperrors.NewIngestionError("read input", err).WithContext("source", source)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = sniffDelimiter(head)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewIngestionError("read header", ErrEmptyInput).WithContext("source", source)
	}
	if err != nil {
		return nil, apperrors.NewIngestionError("read header", err).WithContext("source", source)
	}
	header = cleanHeader(header)
	if isBlank(header) {
		return nil, apperrors.NewIngestionError("read header", ErrEmptyInput).WithContext("source", source)
	}

	ds := &Dataset{Source: source, Header: header, Rows: make([]domain.RawRow, 0)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewIngestionError("read rows", err).
				WithContext("source", source).
				WithContext("row", len(ds.Rows)+1)
		}
		if isBlank(record) {
			continue
		}
		ds.Rows = append(ds.Rows, toRawRow(header, record))
	}
	return ds, nil
}

// ReadWorkbook reads the first sheet of an xlsx export that has a header row.
func ReadWorkbook(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewIngestionError("open workbook", err).WithContext("source", path)
	}
	defer f.Close()
	return readWorkbook(f, path)
}

// ReadWorkbookFrom is ReadWorkbook over an uploaded stream.
func ReadWorkbookFrom(r io.Reader, source string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewIngestionError("open workbook", err).WithContext("source", source)
	}
	defer f.Close()
	return readWorkbook(f, source)
}

func readWorkbook(f *excelize.File, source string) (*Dataset, error) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apperrors.NewIngestionError("read sheet", err).
				WithContext("source", source).
				WithContext("sheet", sheet)
		}

		start := -1
		for i, row := range rows {
			if !isBlank(row) {
				start = i
				break
			}
		}
		if start < 0 {
			continue
		}

		header := cleanHeader(rows[start])
		ds := &Dataset{Source: source, Header: header, Rows: make([]domain.RawRow, 0, len(rows)-start-1)}
		for _, row := range rows[start+1:] {
			if isBlank(row) {
				continue
			}
			ds.Rows = append(ds.Rows, toRawRow(header, row))
		}
		return ds, nil
	}
	return nil, apperrors.NewIngestionError("read workbook", ErrEmptyInput).WithContext("source", source)
}

// sniffDelimiter picks the most frequent candidate delimiter on the first
// line, defaulting to comma.
func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, candidate := range []rune{'\t', ';'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

// cleanHeader removes byte order marks, stray quotes and whitespace that leak
// into column names when an export was re-saved with the wrong encoding.
func cleanHeader(header []string) []string {
	cleaned := make([]string, len(header))
	for i, name := range header {
		name = strings.ReplaceAll(name, "\ufeff", "")
		name = strings.TrimSpace(name)
		name = strings.Trim(name, `"'`)
		cleaned[i] = norm.NFC.String(strings.TrimSpace(name))
	}
	return cleaned
}

// toRawRow zips a record with the header. The first occurrence of a
// duplicated column name wins.
func toRawRow(header, record []string) domain.RawRow {
	row := make(domain.RawRow, len(header))
	for i, name := range header {
		if i >= len(record) {
			break
		}
		if name == "" {
			continue
		}
		if _, dup := row[name]; dup {
			continue
		}
		row[name] = record[i]
	}
	return row
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// String summarises the dataset for logs.
func (d *Dataset) String() string {
	return fmt.Sprintf("%s (%d columns, %d rows)", d.Source, len(d.Header), len(d.Rows))
}
