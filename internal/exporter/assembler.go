package exporter

import (
	"time"

	"mtracecli/internal/analytics"
	"mtracecli/internal/dataprocessing"
	"mtracecli/pkg/contracts/domain"
)

// AssembleOptions selects the optional parts of a payload.
type AssembleOptions struct {
	Format           string
	IncludeEvents    bool
	IncludeTimelines bool
	// GeneratedAt defaults to the current time.
	GeneratedAt time.Time
}

// AssembleRecords converts records and their statistics into the export
// shape. Records is an empty array for an empty set and stays an array for a
// single record.
func AssembleRecords(records []domain.NormalizedRecord, bundle domain.StatisticsBundle) domain.ExportPayload {
	flat := make([]map[string]string, len(records))
	for i, rec := range records {
		flat[i] = rec.Flat()
	}
	return domain.ExportPayload{
		Meta:       domain.ExportMeta{RecordCount: len(records), Mapping: map[string]domain.Resolution{}},
		Records:    flat,
		Statistics: bundle,
		Events:     make([]domain.EventEnvelope, 0),
	}
}

// Assemble builds the full payload of a pipeline run.
func Assemble(res *dataprocessing.Result, opts AssembleOptions) domain.ExportPayload {
	if res == nil {
		return AssembleRecords(nil, analytics.Aggregate(nil, analytics.Options{}))
	}

	payload := AssembleRecords(res.Records, res.Statistics)

	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	payload.Meta = domain.ExportMeta{
		RunID:       res.RunID,
		Source:      res.Source,
		GeneratedAt: generated.UTC().Format(time.RFC3339),
		Format:      opts.Format,
		RecordCount: len(res.Records),
		EventCount:  len(res.Events),
		Mapping:     res.Mapping.AsMap(),
	}

	if opts.IncludeEvents {
		payload.Events = Envelopes(res.Records, res.Events)
		compliance := res.Compliance
		payload.Compliance = &compliance
	}
	if opts.IncludeTimelines && len(res.Timelines) > 0 {
		payload.Messages = res.Timelines
	}
	return payload
}

// Envelopes pairs every event with the identifying fields of its record.
// Events whose record index is out of range keep only the index.
func Envelopes(records []domain.NormalizedRecord, events []domain.ComplianceEvent) []domain.EventEnvelope {
	out := make([]domain.EventEnvelope, len(events))
	for i, ev := range events {
		env := domain.EventEnvelope{
			Type:        ev.Kind(),
			RecordIndex: ev.RecordIndex(),
			Event:       ev,
		}
		if idx := ev.RecordIndex(); idx >= 0 && idx < len(records) {
			rec := records[idx]
			env.DateTime = rec.Value(domain.FieldDateTime)
			env.Sender = rec.Value(domain.FieldSender)
			env.Recipient = rec.Value(domain.FieldRecipient)
			env.Subject = rec.Value(domain.FieldSubject)
		}
		out[i] = env
	}
	return out
}
