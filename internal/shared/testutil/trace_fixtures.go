package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// Annotation blobs seen in message trace exports.
const (
	// PolicyRuleBlob is one matched DLP rule with a filtered AndCondition.
	PolicyRuleBlob = "S:DPA=DPR|ruleId=abc-123|st=2025-01-01T00:00:00Z|predicate=AndCondition|timeSpent=-1|predicate=ContentContainsSensitiveInformation|timeSpent=12|action=BA|timeSpent=5;"
	// UnmatchedRuleBlob evaluates a rule that produced no action.
	UnmatchedRuleBlob = "S:DPA=DPR|ruleId=def-456|predicate=ContentContainsSensitiveInformation|timeSpent=3;"
	// ClassificationBlob carries a data classification hit.
	ClassificationBlob = "S:DPA=DC|ruleId=dc-1|dcId=50842eb7-edc8-4019-85dd-5a5c1f2bb085|conf=85|sev=High|predicate=CCSI|timeSpent=4;"
	// LabelBlob applies a built-in label with header marking and encryption.
	LabelBlob = "S:DPA=LA|labelId=defa4170-0d19-0005-0004-bc88714345d2;S:DPA=CB|labelId=defa4170-0d19-0005-0004-bc88714345d2|cb=9;"
	// FilteringBlob carries spam and authentication verdicts only.
	FilteringBlob = "SFV=SPM|SCL=7|dkim=fail|spf=softfail|quarantined"
)

// TraceHeader is the snake_case header of the historical search export.
var TraceHeader = []string{
	"date_time_utc", "sender_address", "recipient_address", "message_subject",
	"event_id", "source", "directionality", "message_id", "network_message_id",
	"total_bytes", "client_ip", "recipient_status", "custom_data",
}

// TraceRows are four events of three messages matching TraceHeader.
var TraceRows = [][]string{
	{"2025-03-04T09:15:00Z", "alice@contoso.com", "bob@fabrikam.com", "Quarterly report", "RECEIVE", "SMTP", "Inbound", "<m1@contoso.com>", "net-1", "2048", "203.0.113.7", "", PolicyRuleBlob},
	{"2025-03-04T09:15:02Z", "alice@contoso.com", "bob@fabrikam.com", "Quarterly report", "DELIVER", "STOREDRIVER", "Inbound", "<m1@contoso.com>", "net-1", "2048", "203.0.113.7", "Delivered", LabelBlob},
	{"2025-03-04T11:40:00Z", "spammer@bulk.example", "carol@fabrikam.com", "You won", "FAIL", "SMTP", "Inbound", "<m2@bulk.example>", "net-2", "512", "198.51.100.9", "Failed", FilteringBlob},
	{"not a timestamp", "dave@contoso.com", "erin@fabrikam.com;frank@fabrikam.com", "Plans", "RECEIVE", "SMTP", "Outbound", "<m3@contoso.com>", "net-3", "20971520", "", "", UnmatchedRuleBlob + ClassificationBlob},
}

// TraceCSV renders header and rows as comma-separated text.
func TraceCSV(t testing.TB, header []string, rows [][]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return buf.String()
}

// SampleTraceCSV is TraceCSV over TraceHeader and TraceRows.
func SampleTraceCSV(t testing.TB) string {
	return TraceCSV(t, TraceHeader, TraceRows)
}

// WriteTempFile writes content to name inside a fresh temp dir and returns
// the full path.
func WriteTempFile(t testing.TB, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
