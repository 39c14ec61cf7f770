// Package compliance decodes the compliance annotations that message trace
// exports embed in a single free-text column.
//
// # Grammar
//
// The annotation blob is a semicolon separated list of sections. Each section
// is a pipe separated list of key=value pairs whose first pair names the
// section family:
//
//	S:DPA=DPR|ruleId=abc|st=2025-01-01T00:00:00Z|predicate=AndCondition|timeSpent=-1|action=BA|timeSpent=5;
//
// The optional "S:" prefix on the family tag is ignored and keys are matched
// case-insensitively. Recognised families:
//
//	DPA=DPR  policy rule evaluation      -> *domain.PolicyRuleEvaluation
//	DPA=DC   data classification hit     -> *domain.ContentClassification
//	DPA=AL   auto-labeling hit           -> *domain.ContentClassification
//	DPA=LA   sensitivity label applied   -> *domain.SensitivityLabelApplication
//	DPA=CB   content bits for a label    (merged into the label event)
//
// Every predicate and action is followed by a timeSpent pair. A timeSpent of
// -1 means the step ran asynchronously; it is kept on the Timing but never
// added to elapsed totals. Grouping markers such as AndCondition are removed
// from the predicate list.
//
// # Inferred semantics
//
// Two behaviours are inferred from observed data rather than documented by
// the producer of the format and should be confirmed against authoritative
// documentation before being relied on:
//
//   - A policy rule is reported as Matched iff it produced at least one action.
//     The grammar has no explicit match flag.
//   - Built-in sensitivity labels are recognised by the reserved GUID family
//     defa4170-0d19-0005-XXXX-bc88714345d2 and named from the XXXX segment. Any other
//     label identifier is reported as a custom label.
//
// # Failure containment
//
// Decoding never fails. Sections that cannot be split, carry an unknown
// family, or lack a required key are skipped whole and reported to the
// optional SkipHook.
package compliance
