package analytics

import (
	"sort"
	"time"

	"mtracecli/pkg/contracts/domain"
)

const dayLayout = "2006-01-02"

// timeBuckets accumulates the time-dependent aggregates. Only records with
// a parsable timestamp reach it.
type timeBuckets struct {
	loc     *time.Location
	hourly  [24]int
	weekday [7]int
	daily   map[string]int
	first   time.Time
	last    time.Time
	seen    int
}

func newTimeBuckets(loc *time.Location) *timeBuckets {
	if loc == nil {
		loc = time.UTC
	}
	return &timeBuckets{loc: loc, daily: make(map[string]int)}
}

func (b *timeBuckets) add(t time.Time) {
	t = t.In(b.loc)
	b.hourly[t.Hour()]++
	b.weekday[t.Weekday()]++
	b.daily[t.Format(dayLayout)]++

	if b.seen == 0 || t.Before(b.first) {
		b.first = t
	}
	if b.seen == 0 || t.After(b.last) {
		b.last = t
	}
	b.seen++
}

// fill writes the histograms and their argmax values into s. Ties resolve
// to the first bucket in ascending key order.
func (b *timeBuckets) fill(s *domain.StatisticsBundle) {
	s.HourlyHistogram = append([]int(nil), b.hourly[:]...)
	s.PeakHour, s.PeakHourCount = -1, 0
	for hour, n := range b.hourly {
		if n > s.PeakHourCount {
			s.PeakHour, s.PeakHourCount = hour, n
		}
	}

	s.WeekdayHistogram = make([]domain.CountEntry, 7)
	for day, n := range b.weekday {
		name := time.Weekday(day).String()
		s.WeekdayHistogram[day] = domain.CountEntry{Key: name, Count: n}
		if n > s.BusiestWeekdayCount {
			s.BusiestWeekday, s.BusiestWeekdayCount = name, n
		}
	}

	days := make([]string, 0, len(b.daily))
	for day := range b.daily {
		days = append(days, day)
	}
	sort.Strings(days)
	s.DailyHistogram = make([]domain.CountEntry, 0, len(days))
	for _, day := range days {
		n := b.daily[day]
		s.DailyHistogram = append(s.DailyHistogram, domain.CountEntry{Key: day, Count: n})
		if n > s.BusiestDayCount {
			s.BusiestDay, s.BusiestDayCount = day, n
		}
	}

	if b.seen > 0 {
		s.FirstEvent = b.first.Format(time.RFC3339)
		s.LastEvent = b.last.Format(time.RFC3339)
	}
}
