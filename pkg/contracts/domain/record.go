package domain

// RawRow maps an observed column name to its decoded string value.
type RawRow map[string]string

// FieldNames returns the set of column names observed in the row.
func (r RawRow) FieldNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r))
	for name := range r {
		names[name] = struct{}{}
	}
	return names
}

// NormalizedRecord is the canonical shape of one input row. It is built
// once by the normalizer and has no mutators.
type NormalizedRecord struct {
	index   int
	values  [NumFields]string
	present [NumFields]bool
}

// NewNormalizedRecord creates a record for input position index.
// Only fields listed in values are marked present.
func NewNormalizedRecord(index int, values map[Field]string) NormalizedRecord {
	rec := NormalizedRecord{index: index}
	for f, v := range values {
		if f.Valid() {
			rec.values[f] = v
			rec.present[f] = true
		}
	}
	return rec
}

// Index is the zero-based position of the originating input row.
func (r NormalizedRecord) Index() int {
	return r.index
}

// Value returns the field value, or "" when the field is absent.
func (r NormalizedRecord) Value(f Field) string {
	if !f.Valid() {
		return ""
	}
	return r.values[f]
}

// Lookup returns the field value and whether the dataset carried the field.
func (r NormalizedRecord) Lookup(f Field) (string, bool) {
	if !f.Valid() {
		return "", false
	}
	return r.values[f], r.present[f]
}

// Flat returns the record as canonical-name -> value, one key per canonical
// field. Absent fields map to "".
func (r NormalizedRecord) Flat() map[string]string {
	out := make(map[string]string, NumFields)
	for i := range r.values {
		out[Field(i).String()] = r.values[i]
	}
	return out
}
