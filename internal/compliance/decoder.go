package compliance

import (
	"iter"
	"strconv"
	"strings"
	"time"

	"mtracecli/pkg/contracts/domain"
)

// Section families recognised by the decoder.
const (
	familyPolicyRule     = "DPA=DPR"
	familyClassification = "DPA=DC"
	familyAutoLabeling   = "DPA=AL"
	familyLabel          = "DPA=LA"
	familyContentBits    = "DPA=CB"
)

// SkipReason says why a section produced no event.
type SkipReason string

const (
	SkipMalformed     SkipReason = "malformed"
	SkipUnknownFamily SkipReason = "unknown_family"
	SkipMissingField  SkipReason = "missing_required_field"
	SkipInvalidValue  SkipReason = "invalid_value"
)

// SkipHook observes sections that were dropped while decoding.
type SkipHook func(section string, reason SkipReason)

// structuralPredicates are grouping markers with no meaning of their own.
var structuralPredicates = map[string]struct{}{
	"andcondition": {},
	"orcondition":  {},
}

// keyAliases folds the spellings of each key seen across export versions.
var keyAliases = map[string]string{
	"ruleid":           "ruleid",
	"mruleid":          "mruleid",
	"managementruleid": "mruleid",
	"dpid":             "policyid",
	"policyid":         "policyid",
	"st":               "timestamp",
	"timestamp":        "timestamp",
	"predicate":        "predicate",
	"action":           "action",
	"timespent":        "timespent",
	"dcid":             "detectionid",
	"detectionid":      "detectionid",
	"conf":             "confidence",
	"confidence":       "confidence",
	"cl":               "confidence",
	"sev":              "severity",
	"severity":         "severity",
	"labelid":          "labelid",
	"lid":              "labelid",
	"cb":               "contentbits",
	"contentbits":      "contentbits",
}

func canonicalKey(key string) string {
	lower := strings.ToLower(key)
	if alias, ok := keyAliases[lower]; ok {
		return alias
	}
	return lower
}

// Decoder turns annotation blobs into compliance events. The zero value is
// ready to use; a Decoder holds no per-blob state and is safe for
// concurrent use.
type Decoder struct {
	onSkip SkipHook
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithSkipHook registers a hook called for every dropped section.
func WithSkipHook(hook SkipHook) Option {
	return func(d *Decoder) {
		d.onSkip = hook
	}
}

// NewDecoder creates a decoder with the given options.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode returns the events of a blob that is not tied to a dataset row.
// Events carry domain.NoRecord as their record index.
func Decode(blob string) iter.Seq[domain.ComplianceEvent] {
	return defaultDecoder.Events(domain.NoRecord, blob)
}

// DecodeAll is Decode collected into a slice.
func DecodeAll(blob string) []domain.ComplianceEvent {
	return defaultDecoder.DecodeRecord(domain.NoRecord, blob)
}

// DecodeRecord decodes the blob of record and collects the events.
// The result is never nil.
func (d *Decoder) DecodeRecord(record int, blob string) []domain.ComplianceEvent {
	events := make([]domain.ComplianceEvent, 0)
	for ev := range d.Events(record, blob) {
		events = append(events, ev)
	}
	return events
}

// Events returns a lazy sequence over the events of blob. The sequence can
// be ranged over any number of times and yields the same events each time.
func (d *Decoder) Events(record int, blob string) iter.Seq[domain.ComplianceEvent] {
	return func(yield func(domain.ComplianceEvent) bool) {
		if strings.TrimSpace(blob) == "" {
			return
		}
		sections := splitSections(blob)
		labels := collectLabels(sections)
		synthesized := make(map[string]struct{})

		for _, tok := range sections {
			if !tok.ok {
				d.skip(tok.section.raw, SkipMalformed)
				continue
			}
			ev, reason := d.decodeSection(record, tok.section, labels, synthesized)
			if ev == nil {
				if reason != "" {
					d.skip(tok.section.raw, reason)
				}
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

func (d *Decoder) skip(raw string, reason SkipReason) {
	if d.onSkip != nil {
		d.onSkip(raw, reason)
	}
}

// decodeSection dispatches a section to its family handler. A nil event
// with an empty reason means the section was consumed without producing an
// event of its own.
func (d *Decoder) decodeSection(record int, s section, labels labelIndex, synthesized map[string]struct{}) (domain.ComplianceEvent, SkipReason) {
	switch s.family() {
	case familyPolicyRule:
		return decodePolicyRule(record, s)
	case familyClassification:
		return decodeClassification(record, s, domain.DataClassification)
	case familyAutoLabeling:
		return decodeClassification(record, s, domain.AutoLabeling)
	case familyLabel:
		return decodeLabel(record, s, labels)
	case familyContentBits:
		return decodeContentBits(record, s, labels, synthesized)
	default:
		return nil, SkipUnknownFamily
	}
}

// timingList collects predicate/action timings and attaches each timeSpent
// to the most recent entry still waiting for one.
type timingList struct {
	predicates []domain.Timing
	actions    []domain.Timing
	pending    *[]domain.Timing
}

func newTimingList() *timingList {
	return &timingList{
		predicates: make([]domain.Timing, 0),
		actions:    make([]domain.Timing, 0),
	}
}

func (l *timingList) addPredicate(name string) {
	l.predicates = append(l.predicates, domain.Timing{Name: name})
	l.pending = &l.predicates
}

func (l *timingList) addAction(name string) {
	l.actions = append(l.actions, domain.Timing{Name: name})
	l.pending = &l.actions
}

func (l *timingList) setTimeSpent(raw string) {
	if l.pending == nil {
		return
	}
	list := *l.pending
	if ms, err := strconv.Atoi(raw); err == nil {
		list[len(list)-1].ElapsedMs = ms
	}
	l.pending = nil
}

// exposedPredicates drops structural grouping markers.
func (l *timingList) exposedPredicates() []domain.Timing {
	out := make([]domain.Timing, 0, len(l.predicates))
	for _, p := range l.predicates {
		if _, structural := structuralPredicates[strings.ToLower(p.Name)]; structural {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseEventTime(value string) *time.Time {
	t, ok := domain.ParseTimestamp(value)
	if !ok {
		return nil
	}
	return &t
}

func decodePolicyRule(record int, s section) (domain.ComplianceEvent, SkipReason) {
	ev := &domain.PolicyRuleEvaluation{Record: record}
	timings := newTimingList()

	for _, p := range s.pairs {
		switch canonicalKey(p.key) {
		case "ruleid":
			ev.RuleID = p.value
		case "mruleid":
			ev.ManagementRuleID = p.value
		case "policyid":
			ev.PolicyID = p.value
		case "timestamp":
			ev.Timestamp = parseEventTime(p.value)
		case "predicate":
			if p.value != "" {
				timings.addPredicate(p.value)
			}
		case "action":
			if p.value != "" {
				timings.addAction(p.value)
			}
		case "timespent":
			timings.setTimeSpent(p.value)
		}
	}

	if ev.RuleID == "" {
		return nil, SkipMissingField
	}
	ev.Predicates = timings.exposedPredicates()
	ev.Actions = timings.actions
	ev.Matched = len(ev.Actions) > 0
	return ev, ""
}

func decodeClassification(record int, s section, kind domain.ClassificationKind) (domain.ComplianceEvent, SkipReason) {
	ev := &domain.ContentClassification{Record: record, Classification: kind}
	timings := newTimingList()

	for _, p := range s.pairs {
		switch canonicalKey(p.key) {
		case "ruleid":
			ev.RuleID = p.value
		case "mruleid":
			ev.ManagementRuleID = p.value
		case "detectionid":
			ev.DetectionID = p.value
		case "confidence":
			if c, err := strconv.Atoi(p.value); err == nil {
				ev.Confidence = &c
			}
		case "severity":
			ev.Severity = p.value
		case "timestamp":
			ev.Timestamp = parseEventTime(p.value)
		case "predicate":
			if p.value != "" {
				timings.addPredicate(p.value)
			}
		case "timespent":
			timings.setTimeSpent(p.value)
		}
	}

	if ev.RuleID == "" {
		return nil, SkipMissingField
	}
	predicates := timings.exposedPredicates()
	names := make([]string, len(predicates))
	for i, p := range predicates {
		names[i] = p.Name
	}
	ev.PredicateSummary = strings.Join(names, ", ")
	ev.ElapsedMs = domain.SumElapsed(predicates)
	return ev, ""
}

// labelIndex is the result of the pre-scan over a blob's label sections.
type labelIndex struct {
	bits    map[string]domain.ContentBits
	applied map[string]struct{}
}

// collectLabels gathers content bits per label and the set of labels that
// have an application section, so both can be correlated in one pass.
func collectLabels(sections []tokenized) labelIndex {
	idx := labelIndex{
		bits:    make(map[string]domain.ContentBits),
		applied: make(map[string]struct{}),
	}
	for _, tok := range sections {
		if !tok.ok {
			continue
		}
		switch tok.section.family() {
		case familyLabel:
			if id := labelIDOf(tok.section); id != "" {
				idx.applied[normalizeLabelID(id)] = struct{}{}
			}
		case familyContentBits:
			id := labelIDOf(tok.section)
			bits, ok := contentBitsOf(tok.section)
			if id == "" || !ok {
				continue
			}
			key := normalizeLabelID(id)
			idx.bits[key] |= bits
		}
	}
	return idx
}

func labelIDOf(s section) string {
	for _, p := range s.pairs {
		if canonicalKey(p.key) == "labelid" {
			return p.value
		}
	}
	return ""
}

func contentBitsOf(s section) (domain.ContentBits, bool) {
	for _, p := range s.pairs {
		if canonicalKey(p.key) != "contentbits" {
			continue
		}
		v, err := strconv.ParseUint(p.value, 10, 8)
		if err != nil {
			return 0, false
		}
		return domain.ContentBits(v) & 0x0F, true
	}
	return 0, false
}

func newLabelEvent(record int, labelID string) *domain.SensitivityLabelApplication {
	name, builtIn := ClassifyLabel(labelID)
	return &domain.SensitivityLabelApplication{
		Record:    record,
		LabelID:   labelID,
		LabelName: name,
		BuiltIn:   builtIn,
	}
}

func decodeLabel(record int, s section, labels labelIndex) (domain.ComplianceEvent, SkipReason) {
	id := labelIDOf(s)
	if id == "" {
		return nil, SkipMissingField
	}
	ev := newLabelEvent(record, id)
	if bits, ok := labels.bits[normalizeLabelID(id)]; ok {
		ev.ContentBits = &bits
	}
	return ev, ""
}

// decodeContentBits emits a label event only when the blob has no
// application section for the label; otherwise the bits were already merged.
func decodeContentBits(record int, s section, labels labelIndex, synthesized map[string]struct{}) (domain.ComplianceEvent, SkipReason) {
	id := labelIDOf(s)
	if id == "" {
		return nil, SkipMissingField
	}
	if _, ok := contentBitsOf(s); !ok {
		return nil, SkipInvalidValue
	}
	key := normalizeLabelID(id)
	if _, ok := labels.applied[key]; ok {
		return nil, ""
	}
	if _, done := synthesized[key]; done {
		return nil, ""
	}
	synthesized[key] = struct{}{}

	ev := newLabelEvent(record, id)
	bits := labels.bits[key]
	ev.ContentBits = &bits
	return ev, ""
}
