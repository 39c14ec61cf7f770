package analytics

import "mtracecli/pkg/contracts/domain"

// SummarizeCompliance aggregates decoded events. Deferred timings are counted
// but never added to elapsed totals.
func SummarizeCompliance(events []domain.ComplianceEvent, opts Options) domain.ComplianceSummary {
	topN := opts.topN()
	sum := domain.ComplianceSummary{TotalEvents: len(events)}

	matchedRules := make(counter)
	actions := make(counter)
	predicates := make(counter)
	classifications := make(counter)
	labels := make(counter)
	treatments := make(counter)
	records := make(map[int]struct{})

	for _, ev := range events {
		records[ev.RecordIndex()] = struct{}{}

		switch e := ev.(type) {
		case *domain.PolicyRuleEvaluation:
			sum.RuleEvaluations++
			if e.Matched {
				sum.MatchedRules++
				matchedRules.add(e.RuleID)
			}
			for _, a := range e.Actions {
				actions.add(a.Name)
			}
			for _, p := range e.Predicates {
				predicates.add(p.Name)
			}
			sum.TotalEvaluationMs += e.ElapsedMs()
			sum.DeferredTimings += countDeferred(e.Predicates) + countDeferred(e.Actions)

		case *domain.ContentClassification:
			switch e.Classification {
			case domain.AutoLabeling:
				sum.AutoLabelingHits++
			default:
				sum.DataClassifications++
			}
			classifications.add(e.RuleID)

		case *domain.SensitivityLabelApplication:
			sum.LabelApplications++
			if !e.BuiltIn {
				sum.CustomLabels++
			}
			labels.add(e.LabelName)
			if e.ContentBits != nil {
				for _, t := range e.ContentBits.Treatments() {
					treatments.add(t)
				}
			}
		}
	}

	sum.UnmatchedRules = sum.RuleEvaluations - sum.MatchedRules
	sum.MatchRate = percent(sum.MatchedRules, sum.RuleEvaluations)
	if sum.RuleEvaluations > 0 {
		sum.AverageEvaluationMs = float64(sum.TotalEvaluationMs) / float64(sum.RuleEvaluations)
	}
	sum.RecordsWithEvents = len(records)

	sum.TopMatchedRules = matchedRules.top(topN)
	sum.TopActions = actions.top(topN)
	sum.TopPredicates = predicates.top(topN)
	sum.TopClassifications = classifications.top(topN)
	sum.Labels = labels.sorted()
	sum.Treatments = treatments.sorted()

	return sum
}

func countDeferred(timings []domain.Timing) int {
	n := 0
	for _, t := range timings {
		if t.Deferred() {
			n++
		}
	}
	return n
}
