package tokens

import (
	"sort"
	"strings"
)

// Prefix marks custom-property token names and reference values.
const Prefix = "--"

// DarkThemeKey is the legacy marker older documents place inside base to flag
// a dark variant. Loaders extract it into Document.Dark; it is exempt from the
// key prefix rule, excluded from scale expansion, and never emitted.
const DarkThemeKey = "dark-theme"

// Document is one partial theme document. Base maps token names to color
// triple literals; Properties maps token names to literals or references.
// Dark is nil when the document does not state it, so later documents
// override earlier ones only when they actually specify a value.
type Document struct {
	Base       map[string]string
	Properties map[string]string
	Dark       *bool
}

// Merged is the folded, scale-expanded result of Merge. The caller owns it:
// no input document and no later Merge call aliases its maps.
type Merged struct {
	Base       map[string]string
	Properties map[string]string
	Dark       bool
	Generated  int
}

// Merge folds docs in order into a fresh document: later documents overwrite
// matching keys, omitted keys leave earlier values untouched, and the inputs
// are never mutated. A document with no sections contributes nothing. After
// folding, recognized color roles in base are expanded into ramps. The
// returned error carries ramp failures only; the merged document is complete
// and usable regardless.
func Merge(docs []Document) (Merged, error) {
	m := Merged{
		Base:       make(map[string]string),
		Properties: make(map[string]string),
	}

	for _, doc := range docs {
		for k, v := range doc.Base {
			m.Base[k] = v
		}
		for k, v := range doc.Properties {
			m.Properties[k] = v
		}
		if doc.Dark != nil {
			m.Dark = *doc.Dark
		}
	}

	added, err := ExpandScales(m.Base)
	m.Generated = added
	return m, err
}

// CheckReferences returns the properties keys whose reference value names a
// token present in neither section of m, sorted. Merging and serialization
// never resolve references to concrete values, so a dangling one otherwise
// surfaces only in the consuming style layer; this check is for callers that
// want the report eagerly.
func CheckReferences(m Merged) []string {
	var dangling []string
	for k, v := range m.Properties {
		if !strings.HasPrefix(v, Prefix) {
			continue
		}
		if _, ok := m.Base[v]; ok {
			continue
		}
		if _, ok := m.Properties[v]; ok {
			continue
		}
		dangling = append(dangling, k)
	}
	sort.Strings(dangling)
	return dangling
}
