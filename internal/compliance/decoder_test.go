package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtracecli/pkg/contracts/domain"
)

const policyBlob = "S:DPA=DPR|ruleId=abc-123|st=2025-01-01T00:00:00Z|predicate=AndCondition|timeSpent=-1|predicate=ContentContainsSensitiveInformation|timeSpent=12|action=BA|timeSpent=5;"

func TestDecode_PolicyRuleExample(t *testing.T) {
	events := DecodeAll(policyBlob)
	require.Len(t, events, 1)

	ev, ok := events[0].(*domain.PolicyRuleEvaluation)
	require.True(t, ok, "expected *domain.PolicyRuleEvaluation, got %T", events[0])

	assert.Equal(t, "abc-123", ev.RuleID)
	require.NotNil(t, ev.Timestamp)
	assert.True(t, ev.Timestamp.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []domain.Timing{{Name: "ContentContainsSensitiveInformation", ElapsedMs: 12}}, ev.Predicates)
	assert.Equal(t, []domain.Timing{{Name: "BA", ElapsedMs: 5}}, ev.Actions)
	assert.True(t, ev.Matched)
	assert.Equal(t, 17, ev.ElapsedMs())
	assert.Equal(t, domain.NoRecord, ev.RecordIndex())
	assert.Equal(t, domain.EventKindPolicyRule, ev.Kind())
}

func TestDecode_PolicyRuleMatched(t *testing.T) {
	tests := []struct {
		name        string
		blob        string
		wantMatched bool
		wantActions int
	}{
		{
			name:        "no actions",
			blob:        "DPA=DPR|ruleId=r1|predicate=ContentContainsSensitiveInformation|timeSpent=3",
			wantMatched: false,
		},
		{
			name:        "one action",
			blob:        "DPA=DPR|ruleId=r1|predicate=P|timeSpent=3|action=Encrypt|timeSpent=1",
			wantMatched: true,
			wantActions: 1,
		},
		{
			name:        "deferred actions still match",
			blob:        "DPA=DPR|ruleId=r1|action=BA|timeSpent=-1|action=NotifyUser|timeSpent=-1",
			wantMatched: true,
			wantActions: 2,
		},
		{
			name:        "empty action value ignored",
			blob:        "DPA=DPR|ruleId=r1|action=|timeSpent=4",
			wantMatched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := DecodeAll(tt.blob)
			require.Len(t, events, 1)
			ev := events[0].(*domain.PolicyRuleEvaluation)
			assert.Equal(t, tt.wantMatched, ev.Matched)
			assert.Len(t, ev.Actions, tt.wantActions)
		})
	}
}

func TestDecode_DeferredTimingExcludedFromElapsed(t *testing.T) {
	blob := "DPA=DPR|ruleId=r1|predicate=A|timeSpent=-1|predicate=B|timeSpent=7|action=X|timeSpent=-1|action=Y|timeSpent=2"
	events := DecodeAll(blob)
	require.Len(t, events, 1)
	ev := events[0].(*domain.PolicyRuleEvaluation)

	assert.Equal(t, 9, ev.ElapsedMs())
	require.Len(t, ev.Predicates, 2)
	assert.True(t, ev.Predicates[0].Deferred())
	assert.True(t, ev.Actions[0].Deferred())
}

func TestDecode_StructuralMarkersFiltered(t *testing.T) {
	blob := "DPA=DPR|ruleId=r1|predicate=AndCondition|timeSpent=-1|predicate=orcondition|timeSpent=0|predicate=Real|timeSpent=1"
	ev := DecodeAll(blob)[0].(*domain.PolicyRuleEvaluation)

	require.Len(t, ev.Predicates, 1)
	assert.Equal(t, "Real", ev.Predicates[0].Name)
	for _, p := range ev.Predicates {
		assert.NotEqual(t, "AndCondition", p.Name)
	}
}

func TestDecode_Classification(t *testing.T) {
	tests := []struct {
		name         string
		blob         string
		wantKind     domain.ClassificationKind
		wantConf     *int
		wantSeverity string
		wantSummary  string
		wantElapsed  int
	}{
		{
			name:         "data classification",
			blob:         "DPA=DC|ruleId=dc-1|dcid=det-9|conf=85|sev=High|predicate=CreditCard|timeSpent=4|predicate=AndCondition|timeSpent=-1",
			wantKind:     domain.DataClassification,
			wantConf:     intPtr(85),
			wantSeverity: "High",
			wantSummary:  "CreditCard",
			wantElapsed:  4,
		},
		{
			name:        "auto labeling with two predicates",
			blob:        "S:DPA=AL|ruleId=al-1|predicate=SSN|timeSpent=2|predicate=Passport|timeSpent=-1",
			wantKind:    domain.AutoLabeling,
			wantSummary: "SSN, Passport",
			wantElapsed: 2,
		},
		{
			name:        "non numeric confidence dropped",
			blob:        "DPA=DC|ruleId=dc-2|confidence=high",
			wantKind:    domain.DataClassification,
			wantSummary: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := DecodeAll(tt.blob)
			require.Len(t, events, 1)
			ev, ok := events[0].(*domain.ContentClassification)
			require.True(t, ok)

			assert.Equal(t, tt.wantKind, ev.Classification)
			assert.Equal(t, tt.wantConf, ev.Confidence)
			assert.Equal(t, tt.wantSeverity, ev.Severity)
			assert.Equal(t, tt.wantSummary, ev.PredicateSummary)
			assert.Equal(t, tt.wantElapsed, ev.ElapsedMs)
		})
	}
}

func TestDecode_LabelWithContentBits(t *testing.T) {
	const builtIn = "defa4170-0d19-0005-0003-bc88714345d2"
	blob := "DPA=LA|labelId=" + builtIn + ";DPA=CB|labelId=" + builtIn + "|cb=9;"

	events := DecodeAll(blob)
	require.Len(t, events, 1)
	ev := events[0].(*domain.SensitivityLabelApplication)

	assert.Equal(t, builtIn, ev.LabelID)
	assert.Equal(t, "Confidential", ev.LabelName)
	assert.True(t, ev.BuiltIn)
	require.NotNil(t, ev.ContentBits)
	assert.Equal(t, []string{"Header", "Encryption"}, ev.ContentBits.Treatments())
}

func TestDecode_ContentBitsBeforeLabel(t *testing.T) {
	blob := "DPA=CB|labelId=11111111-2222-3333-4444-555555555555|cb=4;DPA=LA|labelId=11111111-2222-3333-4444-555555555555"

	events := DecodeAll(blob)
	require.Len(t, events, 1)
	ev := events[0].(*domain.SensitivityLabelApplication)
	assert.Equal(t, CustomLabelName, ev.LabelName)
	require.NotNil(t, ev.ContentBits)
	assert.True(t, ev.ContentBits.Watermark())
}

func TestDecode_ContentBitsWithoutLabelSynthesized(t *testing.T) {
	blob := "DPA=CB|labelId=aaaa|cb=1;DPA=CB|labelId=AAAA|cb=2;DPA=DPR|ruleId=r1"

	events := DecodeAll(blob)
	require.Len(t, events, 2)

	label, ok := events[0].(*domain.SensitivityLabelApplication)
	require.True(t, ok)
	assert.Equal(t, "aaaa", label.LabelID)
	require.NotNil(t, label.ContentBits)
	assert.Equal(t, domain.ContentBitHeader|domain.ContentBitFooter, *label.ContentBits)

	_, ok = events[1].(*domain.PolicyRuleEvaluation)
	assert.True(t, ok)
}

func TestDecode_LabelWithoutContentBits(t *testing.T) {
	events := DecodeAll("DPA=LA|labelId=x")
	require.Len(t, events, 1)
	assert.Nil(t, events[0].(*domain.SensitivityLabelApplication).ContentBits)
}

func TestDecode_MultipleFamiliesPreserveOrder(t *testing.T) {
	blob := "DPA=DC|ruleId=dc;DPA=DPR|ruleId=dpr|action=BA|timeSpent=1;DPA=LA|labelId=l1;DPA=AL|ruleId=al"

	events := DecodeAll(blob)
	require.Len(t, events, 4)

	kinds := make([]domain.EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind()
	}
	assert.Equal(t, []domain.EventKind{
		domain.EventKindClassification,
		domain.EventKindPolicyRule,
		domain.EventKindLabel,
		domain.EventKindClassification,
	}, kinds)
}

func TestDecode_FailureContainment(t *testing.T) {
	tests := []struct {
		name       string
		blob       string
		wantEvents int
		wantSkips  []SkipReason
	}{
		{
			name: "empty blob",
			blob: "",
		},
		{
			name: "only separators",
			blob: " ; ;; ",
		},
		{
			name:       "garbage section",
			blob:       "not a section;DPA=DPR|ruleId=ok",
			wantEvents: 1,
			wantSkips:  []SkipReason{SkipMalformed},
		},
		{
			name:      "unknown family",
			blob:      "SFV=SPM|scl=5;DPA=XYZ|ruleId=1",
			wantSkips: []SkipReason{SkipUnknownFamily, SkipUnknownFamily},
		},
		{
			name:      "missing rule id drops whole section",
			blob:      "DPA=DPR|predicate=P|timeSpent=3|action=BA|timeSpent=1",
			wantSkips: []SkipReason{SkipMissingField},
		},
		{
			name:      "label without id",
			blob:      "DPA=LA|cb=1",
			wantSkips: []SkipReason{SkipMissingField},
		},
		{
			name:      "invalid content bits",
			blob:      "DPA=CB|labelId=x|cb=lots",
			wantSkips: []SkipReason{SkipInvalidValue},
		},
		{
			name:       "dangling time spent ignored",
			blob:       "DPA=DPR|ruleId=r|timeSpent=5",
			wantEvents: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var skips []SkipReason
			d := NewDecoder(WithSkipHook(func(_ string, reason SkipReason) {
				skips = append(skips, reason)
			}))

			var events []domain.ComplianceEvent
			assert.NotPanics(t, func() {
				events = d.DecodeRecord(0, tt.blob)
			})
			assert.NotNil(t, events)
			assert.Len(t, events, tt.wantEvents)
			assert.Equal(t, tt.wantSkips, skips)
		})
	}
}

func TestDecode_KeysCaseInsensitive(t *testing.T) {
	blob := "s:dpa=dpr|RULEID=r1|MRuleId=m1|DPId=p1|PREDICATE=X|TIMESPENT=3|Action=Y|TimeSpent=4"
	ev := DecodeAll(blob)[0].(*domain.PolicyRuleEvaluation)

	assert.Equal(t, "r1", ev.RuleID)
	assert.Equal(t, "m1", ev.ManagementRuleID)
	assert.Equal(t, "p1", ev.PolicyID)
	assert.Equal(t, 7, ev.ElapsedMs())
}

func TestDecoder_RecordIndex(t *testing.T) {
	d := NewDecoder()
	events := d.DecodeRecord(42, policyBlob+"DPA=LA|labelId=x")
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, 42, ev.RecordIndex())
	}
}

func TestDecode_Restartable(t *testing.T) {
	seq := Decode(policyBlob + "DPA=CB|labelId=l|cb=3;DPA=DC|ruleId=d")

	var first, second []domain.ComplianceEvent
	for ev := range seq {
		first = append(first, ev)
	}
	for ev := range seq {
		second = append(second, ev)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestDecode_EarlyBreak(t *testing.T) {
	count := 0
	for range Decode("DPA=DPR|ruleId=a;DPA=DPR|ruleId=b;DPA=DPR|ruleId=c") {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func intPtr(v int) *int { return &v }
