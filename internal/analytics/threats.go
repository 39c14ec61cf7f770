package analytics

import (
	"regexp"
	"strconv"
	"strings"

	"mtracecli/pkg/contracts/domain"
)

// threatFlags are the heuristic categories of one record. Categories
// overlap: a record can be spam and quarantined at once.
type threatFlags struct {
	spam        bool
	phishing    bool
	malware     bool
	bulk        bool
	quarantined bool
	dkimFail    bool
	spfFail     bool
	dmarcFail   bool
}

func (f threatFlags) authFailure() bool {
	return f.dkimFail || f.spfFail || f.dmarcFail
}

// highSCL matches a spam confidence level of 5 or more.
var highSCL = regexp.MustCompile(`(?:^|[^a-z])scl=([5-9])(?:$|[^0-9])`)

// classifyThreats applies the fixed case-insensitive pattern tests to an
// annotation blob.
func classifyThreats(blob string) threatFlags {
	if blob == "" {
		return threatFlags{}
	}
	b := strings.ToLower(blob)
	return threatFlags{
		spam:        containsAny(b, "spam", "sfv=spm") || highSCL.MatchString(b),
		phishing:    containsAny(b, "phish", "cat:phsh", "cat:hphsh"),
		malware:     containsAny(b, "malware", "virus", "cat:mal"),
		bulk:        containsAny(b, "bulk", "cat:bulk", "sfv=blk"),
		quarantined: strings.Contains(b, "quarantin"),
		dkimFail:    strings.Contains(b, "dkim=fail"),
		spfFail:     containsAny(b, "spf=fail", "spf=softfail"),
		dmarcFail:   strings.Contains(b, "dmarc=fail"),
	}
}

func containsAny(s string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// deliveryOutcome classifies a record from its event id and recipient status.
func deliveryOutcome(rec domain.NormalizedRecord) (delivered, failed bool) {
	event := strings.ToUpper(strings.TrimSpace(rec.Value(domain.FieldEventID)))
	status := strings.ToLower(rec.Value(domain.FieldRecipientStatus))

	delivered = event == "DELIVER" || strings.Contains(status, "delivered")
	failed = event == "FAIL" || strings.Contains(status, "fail")
	return delivered, failed
}

// sizeBuckets are the fixed message size ranges, upper bound exclusive.
var sizeBuckets = []struct {
	label string
	limit int64
}{
	{"<10KB", 10 * 1024},
	{"10KB-100KB", 100 * 1024},
	{"100KB-1MB", 1024 * 1024},
	{"1MB-10MB", 10 * 1024 * 1024},
	{">10MB", -1},
}

func sizeBucket(bytes int64) int {
	for i, b := range sizeBuckets {
		if b.limit < 0 || bytes < b.limit {
			return i
		}
	}
	return len(sizeBuckets) - 1
}

// parseBytes reads a size column, tolerating thousands separators.
func parseBytes(value string) (int64, bool) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
