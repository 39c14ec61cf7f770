package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mtracecli/internal/compliance"
	"mtracecli/internal/config"
	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/shared/testutil"
	"mtracecli/pkg/contracts/domain"
)

func newTestService(t *testing.T) *AnalysisService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := NewAnalysisService(config.Default().Analysis, nil, logger)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC) }
	return svc
}

func boolPtr(v bool) *bool { return &v }

func TestAnalysisService_AnalyzeCSV(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Analyze(context.Background(), AnalysisRequest{
		Source: "trace.csv",
		Format: InputCSV,
		Body:   strings.NewReader(testutil.SampleTraceCSV(t)),
	})
	require.NoError(t, err)

	p := out.Payload
	assert.Equal(t, out.Result.RunID, p.Meta.RunID)
	assert.Equal(t, "trace.csv", p.Meta.Source)
	assert.Equal(t, "2025-03-05T08:00:00Z", p.Meta.GeneratedAt)
	assert.Equal(t, config.FormatJSON, p.Meta.Format)
	assert.Equal(t, 4, p.Meta.RecordCount)
	assert.Equal(t, 4, p.Meta.EventCount)
	assert.Len(t, p.Records, 4)
	assert.Len(t, p.Events, 4)
	require.NotNil(t, p.Compliance)
	assert.Equal(t, 2, p.Compliance.RuleEvaluations)
	assert.NotEmpty(t, p.Messages)
}

func TestAnalysisService_Overrides(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Analyze(context.Background(), AnalysisRequest{
		Source:           "trace.csv",
		Body:             strings.NewReader(testutil.SampleTraceCSV(t)),
		TopN:             1,
		Timezone:         "Asia/Baghdad",
		IncludeEvents:    boolPtr(false),
		IncludeTimelines: boolPtr(false),
	})
	require.NoError(t, err)

	p := out.Payload
	assert.Empty(t, p.Events)
	assert.Nil(t, p.Compliance)
	assert.Nil(t, p.Messages)
	assert.LessOrEqual(t, len(p.Statistics.TopSenders), 1)
	// 09:15Z is 12:15 in Baghdad
	assert.Equal(t, 2, p.Statistics.HourlyHistogram[12])
}

func TestAnalysisService_InvalidTimezone(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Analyze(context.Background(), AnalysisRequest{
		Body:     strings.NewReader(testutil.SampleTraceCSV(t)),
		Timezone: "Mars/Olympus",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestAnalysisService_IngestionFailures(t *testing.T) {
	tests := []struct {
		name   string
		format string
		body   string
	}{
		{name: "empty csv", format: InputCSV, body: ""},
		{name: "not a workbook", format: InputXLSX, body: "plain text"},
		{name: "unknown format", format: "parquet", body: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			out, err := svc.Analyze(context.Background(), AnalysisRequest{
				Source: "upload",
				Format: tt.format,
				Body:   strings.NewReader(tt.body),
			})
			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion), "got %v", err)
		})
	}
}

func TestAnalysisService_AnalyzeWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := append([][]string{testutil.TraceHeader}, testutil.TraceRows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	svc := newTestService(t)
	out, err := svc.Analyze(context.Background(), AnalysisRequest{
		Source: "trace.xlsx",
		Format: InputXLSX,
		Body:   bytes.NewReader(buf.Bytes()),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Payload.Meta.RecordCount)
	assert.Equal(t, 4, out.Payload.Meta.EventCount)
}

func TestAnalysisService_AnalyzeFile(t *testing.T) {
	svc := newTestService(t)
	path := testutil.WriteTempFile(t, "trace.csv", []byte(testutil.SampleTraceCSV(t)))

	out, err := svc.AnalyzeFile(context.Background(), path, AnalysisRequest{})
	require.NoError(t, err)
	assert.Equal(t, path, out.Result.Source)
	assert.Len(t, out.Result.Records, 4)

	_, err = svc.AnalyzeFile(context.Background(), testutil.WriteTempFile(t, "trace.json", []byte("{}")), AnalysisRequest{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion))
}

func TestAnalysisService_CancelledContext(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, AnalysisRequest{Body: strings.NewReader(testutil.SampleTraceCSV(t))})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalysisService_Decode(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name        string
		blob        string
		wantKinds   []domain.EventKind
		wantSkipped []compliance.SkipReason
	}{
		{
			name:      "policy rule",
			blob:      testutil.PolicyRuleBlob,
			wantKinds: []domain.EventKind{domain.EventKindPolicyRule},
		},
		{
			name:      "rule and classification",
			blob:      testutil.UnmatchedRuleBlob + testutil.ClassificationBlob,
			wantKinds: []domain.EventKind{domain.EventKindPolicyRule, domain.EventKindClassification},
		},
		{
			name:        "filtering verdicts only",
			blob:        testutil.FilteringBlob,
			wantKinds:   []domain.EventKind{},
			wantSkipped: []compliance.SkipReason{compliance.SkipUnknownFamily},
		},
		{
			name:      "empty",
			blob:      "",
			wantKinds: []domain.EventKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Decode(context.Background(), tt.blob)
			require.NotNil(t, res.Events)
			require.NotNil(t, res.Skipped)

			kinds := make([]domain.EventKind, 0, len(res.Events))
			for _, ev := range res.Events {
				kinds = append(kinds, ev.Kind())
				assert.Equal(t, domain.NoRecord, ev.RecordIndex())
			}
			assert.Equal(t, tt.wantKinds, kinds)

			reasons := make([]compliance.SkipReason, 0, len(res.Skipped))
			for _, s := range res.Skipped {
				reasons = append(reasons, s.Reason)
			}
			if tt.wantSkipped == nil {
				assert.Empty(t, reasons)
			} else {
				assert.Equal(t, tt.wantSkipped, reasons)
			}
		})
	}
}

func TestNewAnalysisService_BadCatalog(t *testing.T) {
	cfg := config.Default().Analysis
	cfg.CatalogFile = "/nonexistent/catalog.yaml"

	_, err := NewAnalysisService(cfg, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}
