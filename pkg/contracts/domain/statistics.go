package domain

// CountEntry is one bucket of a grouped count.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// StatisticsBundle is the full set of aggregates over one record set.
// Every field is recomputed from scratch on each run.
type StatisticsBundle struct {
	TotalRecords         int `json:"totalRecords"`
	TimestampedRecords   int `json:"timestampedRecords"`
	UnparsableTimestamps int `json:"unparsableTimestamps"`

	UniqueMessages         int `json:"uniqueMessages"`
	UniqueSenders          int `json:"uniqueSenders"`
	UniqueRecipients       int `json:"uniqueRecipients"`
	UniqueSubjects         int `json:"uniqueSubjects"`
	UniqueSenderDomains    int `json:"uniqueSenderDomains"`
	UniqueRecipientDomains int `json:"uniqueRecipientDomains"`

	TopSenders          []CountEntry `json:"topSenders"`
	TopRecipients       []CountEntry `json:"topRecipients"`
	TopSenderDomains    []CountEntry `json:"topSenderDomains"`
	TopRecipientDomains []CountEntry `json:"topRecipientDomains"`
	TopSubjects         []CountEntry `json:"topSubjects"`
	TopClientIPs        []CountEntry `json:"topClientIps"`

	EventTypes        []CountEntry `json:"eventTypes"`
	Directions        []CountEntry `json:"directions"`
	Sources           []CountEntry `json:"sources"`
	RecipientStatuses []CountEntry `json:"recipientStatuses"`

	// HourlyHistogram always has 24 entries, index = hour of day.
	HourlyHistogram []int `json:"hourlyHistogram"`
	// DailyHistogram is keyed by YYYY-MM-DD in ascending order.
	DailyHistogram []CountEntry `json:"dailyHistogram"`
	// WeekdayHistogram always has 7 entries, Sunday first.
	WeekdayHistogram []CountEntry `json:"weekdayHistogram"`

	// PeakHour is -1 when no record has a parsable timestamp.
	PeakHour            int    `json:"peakHour"`
	PeakHourCount       int    `json:"peakHourCount"`
	BusiestDay          string `json:"busiestDay"`
	BusiestDayCount     int    `json:"busiestDayCount"`
	BusiestWeekday      string `json:"busiestWeekday"`
	BusiestWeekdayCount int    `json:"busiestWeekdayCount"`
	FirstEvent          string `json:"firstEvent"`
	LastEvent           string `json:"lastEvent"`

	TotalBytes          int64        `json:"totalBytes"`
	AverageMessageBytes float64      `json:"averageMessageBytes"`
	LargestMessageBytes int64        `json:"largestMessageBytes"`
	SizeDistribution    []CountEntry `json:"sizeDistribution"`

	Delivered    int     `json:"delivered"`
	Failed       int     `json:"failed"`
	DeliveryRate float64 `json:"deliveryRate"`
	FailureRate  float64 `json:"failureRate"`

	Spam             int          `json:"spam"`
	Phishing         int          `json:"phishing"`
	Malware          int          `json:"malware"`
	Bulk             int          `json:"bulk"`
	Quarantined      int          `json:"quarantined"`
	Clean            int          `json:"clean"`
	DKIMFailures     int          `json:"dkimFailures"`
	SPFFailures      int          `json:"spfFailures"`
	DMARCFailures    int          `json:"dmarcFailures"`
	AuthFailures     int          `json:"authFailures"`
	AuthFailureRate  float64      `json:"authFailureRate"`
	ThreatRate       float64      `json:"threatRate"`
	ThreatCategories []CountEntry `json:"threatCategories"`
}

// ComplianceSummary aggregates decoded compliance events.
type ComplianceSummary struct {
	TotalEvents         int          `json:"totalEvents"`
	RuleEvaluations     int          `json:"ruleEvaluations"`
	MatchedRules        int          `json:"matchedRules"`
	UnmatchedRules      int          `json:"unmatchedRules"`
	MatchRate           float64      `json:"matchRate"`
	TopMatchedRules     []CountEntry `json:"topMatchedRules"`
	TopActions          []CountEntry `json:"topActions"`
	TopPredicates       []CountEntry `json:"topPredicates"`
	DataClassifications int          `json:"dataClassifications"`
	AutoLabelingHits    int          `json:"autoLabelingHits"`
	TopClassifications  []CountEntry `json:"topClassifications"`
	LabelApplications   int          `json:"labelApplications"`
	CustomLabels        int          `json:"customLabels"`
	Labels              []CountEntry `json:"labels"`
	Treatments          []CountEntry `json:"treatments"`
	RecordsWithEvents   int          `json:"recordsWithEvents"`
	TotalEvaluationMs   int          `json:"totalEvaluationMs"`
	AverageEvaluationMs float64      `json:"averageEvaluationMs"`
	DeferredTimings     int          `json:"deferredTimings"`
}

// MessageTimeline groups the records of one logical message in input order.
type MessageTimeline struct {
	MessageID     string   `json:"messageId"`
	Sender        string   `json:"sender"`
	Subject       string   `json:"subject"`
	Recipients    []string `json:"recipients"`
	EventCount    int      `json:"eventCount"`
	FirstEventID  string   `json:"firstEventId"`
	LastEventID   string   `json:"lastEventId"`
	FirstSeen     string   `json:"firstSeen"`
	LastSeen      string   `json:"lastSeen"`
	RecordIndexes []int    `json:"recordIndexes"`
}
