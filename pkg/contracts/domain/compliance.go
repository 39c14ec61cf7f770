package domain

import "time"

// EventKind discriminates the ComplianceEvent variants.
type EventKind string

const (
	EventKindPolicyRule     EventKind = "PolicyRuleEvaluation"
	EventKindClassification EventKind = "ContentClassification"
	EventKindLabel          EventKind = "SensitivityLabelApplication"
)

// ClassificationKind distinguishes the two content classification families.
type ClassificationKind string

const (
	DataClassification ClassificationKind = "DataClassification"
	AutoLabeling       ClassificationKind = "AutoLabeling"
)

// DeferredElapsed marks a predicate or action that ran asynchronously.
// It is not a duration.
const DeferredElapsed = -1

// ComplianceEvent is one typed event decoded from an annotation blob.
// The set of implementations is closed to this package.
type ComplianceEvent interface {
	Kind() EventKind
	// RecordIndex points at the originating NormalizedRecord.
	RecordIndex() int
	isComplianceEvent()
}

// Timing is a named predicate or action with its reported duration.
type Timing struct {
	Name      string `json:"name"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Deferred reports whether the timing carries the asynchronous sentinel.
func (t Timing) Deferred() bool {
	return t.ElapsedMs == DeferredElapsed
}

// SumElapsed adds up elapsed milliseconds, skipping deferred entries.
func SumElapsed(timings []Timing) int {
	total := 0
	for _, t := range timings {
		if t.Deferred() || t.ElapsedMs < 0 {
			continue
		}
		total += t.ElapsedMs
	}
	return total
}

// PolicyRuleEvaluation is one evaluated data-protection policy rule.
//
// Matched is inferred: a rule counts as matched iff it produced at least one
// action. The source format has no explicit match flag.
type PolicyRuleEvaluation struct {
	Record           int        `json:"recordIndex"`
	RuleID           string     `json:"ruleId"`
	ManagementRuleID string     `json:"managementRuleId,omitempty"`
	PolicyID         string     `json:"policyId,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	Predicates       []Timing   `json:"predicates"`
	Actions          []Timing   `json:"actions"`
	Matched          bool       `json:"matched"`
}

func (*PolicyRuleEvaluation) Kind() EventKind    { return EventKindPolicyRule }
func (e *PolicyRuleEvaluation) RecordIndex() int { return e.Record }
func (*PolicyRuleEvaluation) isComplianceEvent() {}

// ElapsedMs is the total non-deferred time spent on predicates and actions.
func (e *PolicyRuleEvaluation) ElapsedMs() int {
	return SumElapsed(e.Predicates) + SumElapsed(e.Actions)
}

// ContentClassification is a sensitive-content detection or auto-labeling hit.
type ContentClassification struct {
	Record           int                `json:"recordIndex"`
	RuleID           string             `json:"ruleId"`
	DetectionID      string             `json:"detectionId,omitempty"`
	Confidence       *int               `json:"confidence,omitempty"`
	Severity         string             `json:"severity,omitempty"`
	Timestamp        *time.Time         `json:"timestamp,omitempty"`
	PredicateSummary string             `json:"predicateSummary"`
	ElapsedMs        int                `json:"elapsedMs"`
	Classification   ClassificationKind `json:"kind"`
	ManagementRuleID string             `json:"managementRuleId,omitempty"`
}

func (*ContentClassification) Kind() EventKind    { return EventKindClassification }
func (e *ContentClassification) RecordIndex() int { return e.Record }
func (*ContentClassification) isComplianceEvent() {}

// SensitivityLabelApplication records a label applied to a message.
// ContentBits is nil when the blob carried no content-bits entry for the label.
type SensitivityLabelApplication struct {
	Record      int          `json:"recordIndex"`
	LabelID     string       `json:"labelId"`
	LabelName   string       `json:"labelName"`
	BuiltIn     bool         `json:"builtIn"`
	ContentBits *ContentBits `json:"contentBits,omitempty"`
}

func (*SensitivityLabelApplication) Kind() EventKind    { return EventKindLabel }
func (e *SensitivityLabelApplication) RecordIndex() int { return e.Record }
func (*SensitivityLabelApplication) isComplianceEvent() {}

// ContentBits is the protective-treatment bitmask applied alongside a label.
type ContentBits uint8

const (
	ContentBitHeader ContentBits = 1 << iota
	ContentBitFooter
	ContentBitWatermark
	ContentBitEncryption
)

func (b ContentBits) HeaderMarking() bool { return b&ContentBitHeader != 0 }
func (b ContentBits) FooterMarking() bool { return b&ContentBitFooter != 0 }
func (b ContentBits) Watermark() bool     { return b&ContentBitWatermark != 0 }
func (b ContentBits) Encryption() bool    { return b&ContentBitEncryption != 0 }

// Treatments names the treatments set in b, lowest bit first.
func (b ContentBits) Treatments() []string {
	treatments := make([]string, 0, 4)
	if b.HeaderMarking() {
		treatments = append(treatments, "Header")
	}
	if b.FooterMarking() {
		treatments = append(treatments, "Footer")
	}
	if b.Watermark() {
		treatments = append(treatments, "Watermark")
	}
	if b.Encryption() {
		treatments = append(treatments, "Encryption")
	}
	return treatments
}
