package analytics

import (
	"strings"
	"time"

	"mtracecli/pkg/contracts/domain"
)

// DefaultTopN is the length of top-N groupings when Options.TopN is unset.
const DefaultTopN = 10

// Options tunes the aggregation. The zero value is usable.
type Options struct {
	// TopN bounds every top-N grouping; <= 0 means DefaultTopN.
	TopN int
	// Location is the zone time buckets are computed in; nil means UTC.
	Location *time.Location
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

// Aggregate computes the statistics bundle over records. It is a pure
// function of its input; an empty input yields zero counts, zero rates,
// a 24-slot hourly histogram and PeakHour -1.
func Aggregate(records []domain.NormalizedRecord, opts Options) domain.StatisticsBundle {
	s := domain.StatisticsBundle{TotalRecords: len(records)}
	topN := opts.topN()

	var (
		messages         = make(counter)
		senders          = make(counter)
		recipients       = make(counter)
		subjects         = make(counter)
		senderDomains    = make(counter)
		recipientDomains = make(counter)
		clientIPs        = make(counter)
		eventTypes       = make(counter)
		directions       = make(counter)
		sources          = make(counter)
		statuses         = make(counter)
		sizes            = make([]int, len(sizeBuckets))
		buckets          = newTimeBuckets(opts.Location)
	)
	var sized, threatAny int

	for _, rec := range records {
		messages.add(messageKey(rec))

		sender := strings.TrimSpace(rec.Value(domain.FieldSender))
		senders.add(sender)
		senderDomains.add(domainOf(sender))

		for _, r := range SplitRecipients(rec.Value(domain.FieldRecipient)) {
			recipients.add(r)
			recipientDomains.add(domainOf(r))
		}

		subjects.add(rec.Value(domain.FieldSubject))
		clientIPs.add(strings.TrimSpace(rec.Value(domain.FieldClientIP)))
		eventTypes.add(strings.TrimSpace(rec.Value(domain.FieldEventID)))
		directions.add(strings.TrimSpace(rec.Value(domain.FieldDirection)))
		sources.add(strings.TrimSpace(rec.Value(domain.FieldSource)))
		statuses.add(strings.TrimSpace(rec.Value(domain.FieldRecipientStatus)))

		if raw := rec.Value(domain.FieldDateTime); strings.TrimSpace(raw) != "" {
			if t, ok := domain.ParseTimestamp(raw); ok {
				buckets.add(t)
				s.TimestampedRecords++
			} else {
				s.UnparsableTimestamps++
			}
		}

		if n, ok := parseBytes(rec.Value(domain.FieldTotalBytes)); ok {
			s.TotalBytes += n
			if n > s.LargestMessageBytes {
				s.LargestMessageBytes = n
			}
			sizes[sizeBucket(n)]++
			sized++
		}

		delivered, failed := deliveryOutcome(rec)
		if delivered {
			s.Delivered++
		}
		if failed {
			s.Failed++
		}

		flags := classifyThreats(rec.Value(domain.FieldAnnotationBlob))
		s.Spam += boolInt(flags.spam)
		s.Phishing += boolInt(flags.phishing)
		s.Malware += boolInt(flags.malware)
		s.Bulk += boolInt(flags.bulk)
		s.Quarantined += boolInt(flags.quarantined)
		s.DKIMFailures += boolInt(flags.dkimFail)
		s.SPFFailures += boolInt(flags.spfFail)
		s.DMARCFailures += boolInt(flags.dmarcFail)
		s.AuthFailures += boolInt(flags.authFailure())
		if flags.spam || flags.phishing || flags.malware || flags.bulk {
			threatAny++
		}
	}

	s.UniqueMessages = len(messages)
	s.UniqueSenders = len(senders)
	s.UniqueRecipients = len(recipients)
	s.UniqueSubjects = len(subjects)
	s.UniqueSenderDomains = len(senderDomains)
	s.UniqueRecipientDomains = len(recipientDomains)

	s.TopSenders = senders.top(topN)
	s.TopRecipients = recipients.top(topN)
	s.TopSenderDomains = senderDomains.top(topN)
	s.TopRecipientDomains = recipientDomains.top(topN)
	s.TopSubjects = subjects.top(topN)
	s.TopClientIPs = clientIPs.top(topN)

	s.EventTypes = eventTypes.sorted()
	s.Directions = directions.sorted()
	s.Sources = sources.sorted()
	s.RecipientStatuses = statuses.sorted()

	buckets.fill(&s)

	if sized > 0 {
		s.AverageMessageBytes = float64(s.TotalBytes) / float64(sized)
	}
	s.SizeDistribution = make([]domain.CountEntry, len(sizeBuckets))
	for i, b := range sizeBuckets {
		s.SizeDistribution[i] = domain.CountEntry{Key: b.label, Count: sizes[i]}
	}

	s.DeliveryRate = percent(s.Delivered, s.TotalRecords)
	s.FailureRate = percent(s.Failed, s.TotalRecords)

	s.Clean = s.TotalRecords - max(s.Spam, s.Phishing, s.Malware, s.Bulk)
	if s.Clean < 0 {
		s.Clean = 0
	}
	s.ThreatRate = percent(threatAny, s.TotalRecords)
	s.AuthFailureRate = percent(s.AuthFailures, s.TotalRecords)
	s.ThreatCategories = []domain.CountEntry{
		{Key: "Spam", Count: s.Spam},
		{Key: "Phishing", Count: s.Phishing},
		{Key: "Malware", Count: s.Malware},
		{Key: "Bulk", Count: s.Bulk},
		{Key: "Quarantined", Count: s.Quarantined},
	}

	return s
}

// SplitRecipients splits a semicolon or comma joined recipient list.
func SplitRecipients(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ';' || r == ',' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// messageKey identifies the logical message of a record.
func messageKey(rec domain.NormalizedRecord) string {
	if id := strings.TrimSpace(rec.Value(domain.FieldMessageID)); id != "" {
		return id
	}
	return strings.TrimSpace(rec.Value(domain.FieldNetworkMessageID))
}

// domainOf returns the domain part of an address as written.
func domainOf(address string) string {
	at := strings.LastIndexByte(address, '@')
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.Trim(address[at+1:], "<> ")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
