package domain

// ExportPayload is the single handoff to the presentation layer. Records and
// Statistics are always present; Records is never null.
type ExportPayload struct {
	Meta       ExportMeta          `json:"meta"`
	Records    []map[string]string `json:"records"`
	Statistics StatisticsBundle    `json:"statistics"`
	Events     []EventEnvelope     `json:"events"`
	Compliance *ComplianceSummary  `json:"compliance,omitempty"`
	Messages   []MessageTimeline   `json:"messages,omitempty"`
}

// ExportMeta describes the run that produced the payload.
type ExportMeta struct {
	RunID       string                `json:"runId"`
	Source      string                `json:"source"`
	GeneratedAt string                `json:"generatedAt"`
	Format      string                `json:"format"`
	RecordCount int                   `json:"recordCount"`
	EventCount  int                   `json:"eventCount"`
	Mapping     map[string]Resolution `json:"mapping"`
}

// EventEnvelope carries a compliance event together with the identifying
// fields of its originating record.
type EventEnvelope struct {
	Type        EventKind       `json:"type"`
	RecordIndex int             `json:"recordIndex"`
	DateTime    string          `json:"dateTime,omitempty"`
	Sender      string          `json:"sender,omitempty"`
	Recipient   string          `json:"recipient,omitempty"`
	Subject     string          `json:"subject,omitempty"`
	Event       ComplianceEvent `json:"event"`
}
