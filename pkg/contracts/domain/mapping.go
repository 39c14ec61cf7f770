package domain

// CatalogEntry lists the acceptable source column names for one canonical
// field, in priority order.
type CatalogEntry struct {
	Field    Field    `json:"field" yaml:"field"`
	Synonyms []string `json:"synonyms" yaml:"synonyms"`
}

// FieldCatalog is the read-only synonym catalog used to resolve a dataset's
// header. Fields missing from the catalog always resolve to absent.
type FieldCatalog []CatalogEntry

// Synonyms returns the synonym list for f, or nil when the catalog has none.
func (c FieldCatalog) Synonyms(f Field) []string {
	for _, entry := range c {
		if entry.Field == f {
			return entry.Synonyms
		}
	}
	return nil
}

// Resolution is the outcome of resolving one canonical field.
type Resolution struct {
	Source  string `json:"source,omitempty"`
	Present bool   `json:"present"`
}

// ResolvedMapping holds exactly one Resolution per canonical field.
type ResolvedMapping struct {
	resolutions [NumFields]Resolution
}

// NewResolvedMapping builds a mapping from the given field -> source name
// pairs. Fields not listed resolve to absent.
func NewResolvedMapping(sources map[Field]string) ResolvedMapping {
	var m ResolvedMapping
	for f, src := range sources {
		if f.Valid() {
			m.resolutions[f] = Resolution{Source: src, Present: true}
		}
	}
	return m
}

// Resolve returns the source column name for f and whether it was found.
func (m ResolvedMapping) Resolve(f Field) (string, bool) {
	if !f.Valid() {
		return "", false
	}
	r := m.resolutions[f]
	return r.Source, r.Present
}

// Resolution returns the full resolution record for f.
func (m ResolvedMapping) Resolution(f Field) Resolution {
	if !f.Valid() {
		return Resolution{}
	}
	return m.resolutions[f]
}

// PresentCount returns how many canonical fields resolved to a column.
func (m ResolvedMapping) PresentCount() int {
	n := 0
	for _, r := range m.resolutions {
		if r.Present {
			n++
		}
	}
	return n
}

// Missing lists the canonical fields that resolved to absent.
func (m ResolvedMapping) Missing() []Field {
	var missing []Field
	for i, r := range m.resolutions {
		if !r.Present {
			missing = append(missing, Field(i))
		}
	}
	return missing
}

// AsMap returns the mapping keyed by canonical field name.
func (m ResolvedMapping) AsMap() map[string]Resolution {
	out := make(map[string]Resolution, NumFields)
	for i, r := range m.resolutions {
		out[Field(i).String()] = r
	}
	return out
}
