package dataprocessing

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/shared/testutil"
	"mtracecli/pkg/contracts/domain"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		header   []string
		rows     int
		firstRow domain.RawRow
	}{
		{
			name:     "comma",
			input:    "Sender,Subject\nalice@contoso.com,Hi\n",
			header:   []string{"Sender", "Subject"},
			rows:     1,
			firstRow: domain.RawRow{"Sender": "alice@contoso.com", "Subject": "Hi"},
		},
		{
			name:     "tab",
			input:    "Sender\tSubject\nalice@contoso.com\tHi, there\n",
			header:   []string{"Sender", "Subject"},
			rows:     1,
			firstRow: domain.RawRow{"Sender": "alice@contoso.com", "Subject": "Hi, there"},
		},
		{
			name:     "semicolon",
			input:    "Sender;Subject\nalice@contoso.com;Hi\n",
			header:   []string{"Sender", "Subject"},
			rows:     1,
			firstRow: domain.RawRow{"Sender": "alice@contoso.com", "Subject": "Hi"},
		},
		{
			name:     "utf8 bom and quoted header",
			input:    "\ufeff\"Sender\",Subject\nalice@contoso.com,Hi\n",
			header:   []string{"Sender", "Subject"},
			rows:     1,
			firstRow: domain.RawRow{"Sender": "alice@contoso.com", "Subject": "Hi"},
		},
		{
			name:     "ragged row",
			input:    "Sender,Subject,Status\nalice@contoso.com\n",
			header:   []string{"Sender", "Subject", "Status"},
			rows:     1,
			firstRow: domain.RawRow{"Sender": "alice@contoso.com"},
		},
		{
			name:     "duplicate column keeps first",
			input:    "Sender,Sender\nfirst,second\n",
			header:   []string{"Sender", "Sender"},
			rows:     1,
			firstRow: domain.RawRow{"Sender": "first"},
		},
		{
			name:   "header only",
			input:  "Sender,Subject\n",
			header: []string{"Sender", "Subject"},
			rows:   0,
		},
		{
			name:     "blank lines skipped",
			input:    "Sender\n\nalice@contoso.com\n,\n",
			header:   []string{"Sender"},
			rows:     1,
			firstRow: domain.RawRow{"Sender": "alice@contoso.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ReadCSV(strings.NewReader(tt.input), "test.csv")
			require.NoError(t, err)

			assert.Equal(t, "test.csv", ds.Source)
			assert.Equal(t, tt.header, ds.Header)
			require.Len(t, ds.Rows, tt.rows)
			if tt.rows > 0 {
				assert.Equal(t, tt.firstRow, ds.Rows[0])
			}
		})
	}
}

func TestReadCSVUTF16(t *testing.T) {
	text := "Sender,Subject\r\nalice@contoso.com,Grüße\r\n"

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFE})
	for _, u := range utf16.Encode([]rune(text)) {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, u))
	}

	ds, err := ReadCSV(&buf, "utf16.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Sender", "Subject"}, ds.Header)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "Grüße", ds.Rows[0]["Subject"])
}

func TestReadCSVEmpty(t *testing.T) {
	for _, input := range []string{"", "\n\n", " , \n"} {
		_, err := ReadCSV(strings.NewReader(input), "empty.csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion))
	}
}

func TestReadFile(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		path := testutil.WriteTempFile(t, "trace.csv", []byte(testutil.SampleTraceCSV(t)))

		ds, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, testutil.TraceHeader, ds.Header)
		assert.Len(t, ds.Rows, len(testutil.TraceRows))
		assert.Contains(t, ds.String(), "13 columns, 4 rows")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ReadFile("trace.json")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion))
	})
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Received", "SenderAddress", "Subject"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2025-03-04T09:15:00Z", "alice@contoso.com", "Hi"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]interface{}{"2025-03-04T10:00:00Z", "bob@fabrikam.com"}))

	path := filepath.Join(t.TempDir(), "trace.xlsx")
	require.NoError(t, f.SaveAs(path))

	ds, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Received", "SenderAddress", "Subject"}, ds.Header)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "alice@contoso.com", ds.Rows[0]["SenderAddress"])
	assert.Equal(t, domain.RawRow{"Received": "2025-03-04T10:00:00Z", "SenderAddress": "bob@fabrikam.com"}, ds.Rows[1])

	t.Run("from reader", func(t *testing.T) {
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		ds, err := ReadWorkbookFrom(buf, "upload.xlsx")
		require.NoError(t, err)
		assert.Equal(t, "upload.xlsx", ds.Source)
		assert.Len(t, ds.Rows, 2)
	})

	t.Run("empty workbook", func(t *testing.T) {
		empty := excelize.NewFile()
		defer empty.Close()
		buf, err := empty.WriteToBuffer()
		require.NoError(t, err)

		_, err = ReadWorkbookFrom(buf, "empty.xlsx")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ReadWorkbookFrom(strings.NewReader("plain text"), "bad.xlsx")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion))
	})
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b,c\nx;y;z;w;v")))
	assert.Equal(t, '\t', sniffDelimiter([]byte("a\tb\tc")))
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b")))
	assert.Equal(t, ',', sniffDelimiter(nil))
}
