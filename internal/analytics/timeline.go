package analytics

import (
	"strings"
	"time"

	"mtracecli/pkg/contracts/domain"
)

// BuildTimelines groups records by message in input order. Records without a
// message or network message id are left out. Groups are ordered by first
// appearance; within a group the first and last event follow input order,
// while FirstSeen/LastSeen are the earliest and latest parsable timestamps.
func BuildTimelines(records []domain.NormalizedRecord, opts Options) []domain.MessageTimeline {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	type group struct {
		timeline   domain.MessageTimeline
		recipients map[string]struct{}
		first      time.Time
		last       time.Time
		timed      bool
	}

	index := make(map[string]int)
	groups := make([]*group, 0)

	for _, rec := range records {
		key := messageKey(rec)
		if key == "" {
			continue
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, &group{
				timeline: domain.MessageTimeline{
					MessageID:     key,
					Recipients:    make([]string, 0),
					RecordIndexes: make([]int, 0),
				},
				recipients: make(map[string]struct{}),
			})
		}
		g := groups[i]
		tl := &g.timeline

		if tl.Sender == "" {
			tl.Sender = strings.TrimSpace(rec.Value(domain.FieldSender))
		}
		if tl.Subject == "" {
			tl.Subject = rec.Value(domain.FieldSubject)
		}
		for _, r := range SplitRecipients(rec.Value(domain.FieldRecipient)) {
			if _, dup := g.recipients[r]; !dup {
				g.recipients[r] = struct{}{}
				tl.Recipients = append(tl.Recipients, r)
			}
		}

		if event := strings.TrimSpace(rec.Value(domain.FieldEventID)); event != "" {
			if tl.FirstEventID == "" {
				tl.FirstEventID = event
			}
			tl.LastEventID = event
		}
		tl.EventCount++
		tl.RecordIndexes = append(tl.RecordIndexes, rec.Index())

		if t, ok := domain.ParseTimestamp(rec.Value(domain.FieldDateTime)); ok {
			if !g.timed || t.Before(g.first) {
				g.first = t
			}
			if !g.timed || t.After(g.last) {
				g.last = t
			}
			g.timed = true
		}
	}

	timelines := make([]domain.MessageTimeline, len(groups))
	for i, g := range groups {
		if g.timed {
			g.timeline.FirstSeen = g.first.In(loc).Format(time.RFC3339)
			g.timeline.LastSeen = g.last.In(loc).Format(time.RFC3339)
		}
		timelines[i] = g.timeline
	}
	return timelines
}
