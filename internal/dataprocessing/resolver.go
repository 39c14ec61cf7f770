package dataprocessing

import "mtracecli/pkg/contracts/domain"

// Resolve maps every canonical field to the first of its synonyms present in
// observed. Matching is exact and case-sensitive; a field none of whose
// synonyms is observed resolves to absent. Resolve never fails.
func Resolve(observed map[string]struct{}, catalog domain.FieldCatalog) domain.ResolvedMapping {
	sources := make(map[domain.Field]string, len(catalog))
	for _, entry := range catalog {
		if !entry.Field.Valid() {
			continue
		}
		if _, done := sources[entry.Field]; done {
			continue
		}
		for _, name := range entry.Synonyms {
			if _, ok := observed[name]; ok {
				sources[entry.Field] = name
				break
			}
		}
	}
	return domain.NewResolvedMapping(sources)
}

// ResolveHeader is Resolve over a header row.
func ResolveHeader(header []string, catalog domain.FieldCatalog) domain.ResolvedMapping {
	observed := make(map[string]struct{}, len(header))
	for _, name := range header {
		observed[name] = struct{}{}
	}
	return Resolve(observed, catalog)
}
