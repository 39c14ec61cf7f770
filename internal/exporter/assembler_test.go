package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtracecli/internal/analytics"
	"mtracecli/internal/dataprocessing"
	"mtracecli/internal/shared/testutil"
	"mtracecli/pkg/contracts/domain"
)

func runSample(t *testing.T) *dataprocessing.Result {
	t.Helper()
	ds, err := dataprocessing.ReadCSV(strings.NewReader(testutil.SampleTraceCSV(t)), "trace.csv")
	require.NoError(t, err)

	res, err := dataprocessing.NewPipeline(nil, dataprocessing.PipelineConfig{IncludeTimelines: true}, nil).
		Run(context.Background(), ds)
	require.NoError(t, err)
	return res
}

func encode(t *testing.T, v any) map[string]json.RawMessage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, v))

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestAssembleRecords_ArrayShape(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.NormalizedRecord
		prefix  string
		want    int
	}{
		{name: "zero records", records: nil, prefix: "[]", want: 0},
		{
			name:    "one record",
			records: []domain.NormalizedRecord{domain.NewNormalizedRecord(0, map[domain.Field]string{domain.FieldSender: "a@b.c"})},
			prefix:  "[",
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := AssembleRecords(tt.records, analytics.Aggregate(tt.records, analytics.Options{}))
			out := encode(t, payload)

			raw := strings.TrimSpace(string(out["records"]))
			assert.True(t, strings.HasPrefix(raw, tt.prefix), "records encoded as %s", raw)

			var records []map[string]string
			require.NoError(t, json.Unmarshal(out["records"], &records))
			assert.Len(t, records, tt.want)
			assert.Equal(t, "[]", strings.TrimSpace(string(out["events"])))
		})
	}
}

func TestAssembleRecords_OnlyCanonicalFields(t *testing.T) {
	rec := domain.NewNormalizedRecord(0, map[domain.Field]string{domain.FieldSubject: "Hi"})
	payload := AssembleRecords([]domain.NormalizedRecord{rec}, domain.StatisticsBundle{})

	require.Len(t, payload.Records, 1)
	assert.Len(t, payload.Records[0], int(domain.NumFields))
	assert.Equal(t, "Hi", payload.Records[0]["subject"])
	assert.Equal(t, "", payload.Records[0]["sender"])
}

func TestAssemble(t *testing.T) {
	res := runSample(t)
	generated := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)

	t.Run("with events and timelines", func(t *testing.T) {
		payload := Assemble(res, AssembleOptions{
			Format:           "json",
			IncludeEvents:    true,
			IncludeTimelines: true,
			GeneratedAt:      generated,
		})

		assert.Equal(t, res.RunID, payload.Meta.RunID)
		assert.Equal(t, "trace.csv", payload.Meta.Source)
		assert.Equal(t, "2025-03-05T08:00:00Z", payload.Meta.GeneratedAt)
		assert.Equal(t, 4, payload.Meta.RecordCount)
		assert.Equal(t, 4, payload.Meta.EventCount)
		assert.Equal(t, domain.Resolution{Source: "sender_address", Present: true}, payload.Meta.Mapping["sender"])
		assert.False(t, payload.Meta.Mapping["tenantId"].Present)

		require.Len(t, payload.Events, 4)
		first := payload.Events[0]
		assert.Equal(t, domain.EventKindPolicyRule, first.Type)
		assert.Equal(t, "alice@contoso.com", first.Sender)
		assert.Equal(t, "Quarterly report", first.Subject)
		require.NotNil(t, payload.Compliance)
		assert.Equal(t, 4, payload.Compliance.TotalEvents)
		assert.NotEmpty(t, payload.Messages)

		out := encode(t, payload)
		assert.Contains(t, string(out["events"]), `"ruleId": "abc-123"`)
	})

	t.Run("records and statistics only", func(t *testing.T) {
		payload := Assemble(res, AssembleOptions{Format: "json"})

		assert.Len(t, payload.Records, 4)
		assert.NotNil(t, payload.Events)
		assert.Empty(t, payload.Events)
		assert.Nil(t, payload.Compliance)
		assert.Nil(t, payload.Messages)
		assert.Equal(t, 4, payload.Meta.EventCount)

		out := encode(t, payload)
		assert.NotContains(t, out, "compliance")
		assert.NotContains(t, out, "messages")
	})

	t.Run("nil result", func(t *testing.T) {
		payload := Assemble(nil, AssembleOptions{})
		assert.NotNil(t, payload.Records)
		assert.Empty(t, payload.Records)
		assert.Equal(t, -1, payload.Statistics.PeakHour)

		var stats map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(encode(t, payload)["statistics"], &stats))
		assert.JSONEq(t, "[]", string(stats["topSenders"]))
		assert.JSONEq(t, "[]", string(stats["dailyHistogram"]))
		assert.Len(t, payload.Statistics.HourlyHistogram, 24)
	})
}

func TestEnvelopes_OutOfRangeRecord(t *testing.T) {
	ev := &domain.SensitivityLabelApplication{Record: domain.NoRecord, LabelID: "x"}
	envs := Envelopes(nil, []domain.ComplianceEvent{ev})

	require.Len(t, envs, 1)
	assert.Equal(t, domain.NoRecord, envs[0].RecordIndex)
	assert.Empty(t, envs[0].Sender)
	assert.Equal(t, domain.EventKindLabel, envs[0].Type)
}
