package analytics

import (
	"math"
	"sort"

	"mtracecli/pkg/contracts/domain"
)

// counter tallies string keys. Empty keys are ignored.
type counter map[string]int

func (c counter) add(key string) {
	if key == "" {
		return
	}
	c[key]++
}

// sorted returns every entry by descending count, ties broken by key so the
// output is stable across runs.
func (c counter) sorted() []domain.CountEntry {
	entries := make([]domain.CountEntry, 0, len(c))
	for k, v := range c {
		entries = append(entries, domain.CountEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// top returns at most n entries of sorted. n <= 0 means all.
func (c counter) top(n int) []domain.CountEntry {
	entries := c.sorted()
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// percent returns part as a percentage of total rounded to two decimals,
// or 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}
