package compliance

import "strings"

const (
	sectionSeparator = ";"
	pairSeparator    = "|"
	valueSeparator   = "="
)

// pair is one key=value element of a section.
type pair struct {
	key   string
	value string
}

// section is one tokenized ';'-delimited part of an annotation blob.
type section struct {
	raw    string
	tag    string
	subtag string
	pairs  []pair
}

// family returns the normalised "TAG=SUBTAG" identifier of the section.
func (s section) family() string {
	return strings.ToUpper(s.tag) + valueSeparator + strings.ToUpper(s.subtag)
}

// splitSections tokenizes a blob. Empty sections are dropped; sections whose
// head is not a key=value pair are returned with ok=false so callers can
// report them.
func splitSections(blob string) []tokenized {
	parts := strings.Split(blob, sectionSeparator)
	out := make([]tokenized, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s, ok := parseSection(part)
		out = append(out, tokenized{section: s, ok: ok})
	}
	return out
}

type tokenized struct {
	section section
	ok      bool
}

// parseSection splits a single section into its family tag and pairs.
func parseSection(raw string) (section, bool) {
	s := section{raw: raw}
	elements := strings.Split(raw, pairSeparator)

	head, ok := splitPair(elements[0])
	if !ok || head.key == "" || head.value == "" {
		return s, false
	}
	s.tag = stripScope(head.key)
	s.subtag = head.value
	if s.tag == "" {
		return s, false
	}

	s.pairs = make([]pair, 0, len(elements)-1)
	for _, element := range elements[1:] {
		p, ok := splitPair(element)
		if !ok || p.key == "" {
			continue
		}
		s.pairs = append(s.pairs, p)
	}
	return s, true
}

// splitPair splits on the first '=' so values may themselves contain '='.
func splitPair(element string) (pair, bool) {
	key, value, found := strings.Cut(element, valueSeparator)
	if !found {
		return pair{}, false
	}
	return pair{key: strings.TrimSpace(key), value: strings.TrimSpace(value)}, true
}

// stripScope removes the "S:" scope prefix from a family tag.
func stripScope(tag string) string {
	if len(tag) >= 2 && (tag[0] == 'S' || tag[0] == 's') && tag[1] == ':' {
		return strings.TrimSpace(tag[2:])
	}
	return tag
}
