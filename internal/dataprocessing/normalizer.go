package dataprocessing

import (
	"strings"

	"mtracecli/pkg/contracts/domain"
)

// Normalize builds the canonical record for row. Present fields whose column
// is missing from a ragged row become "". Apart from stripping quote
// characters left over from mis-detected header encodings, values are
// copied as-is.
func Normalize(index int, row domain.RawRow, mapping domain.ResolvedMapping) domain.NormalizedRecord {
	values := make(map[domain.Field]string, domain.NumFields)
	for _, f := range domain.AllFields() {
		source, ok := mapping.Resolve(f)
		if !ok {
			continue
		}
		values[f] = trimQuotes(row[source])
	}
	return domain.NewNormalizedRecord(index, values)
}

// NormalizeAll normalizes rows sequentially, preserving input order.
func NormalizeAll(rows []domain.RawRow, mapping domain.ResolvedMapping) []domain.NormalizedRecord {
	records := make([]domain.NormalizedRecord, len(rows))
	for i, row := range rows {
		records[i] = Normalize(i, row, mapping)
	}
	return records
}

func trimQuotes(value string) string {
	return strings.Trim(value, `"`)
}
