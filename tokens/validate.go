package tokens

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationReport lists shape findings for one document. Findings are
// advisory: loaders log them and merge the document anyway.
type ValidationReport struct {
	Errors []string
}

// Valid reports whether the document passed every shape check.
func (r ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks one document's shape: at least one section must be present,
// and every key except the legacy dark marker must carry the custom-property
// prefix. Findings accumulate in deterministic order, base keys sorted before
// properties keys.
func Validate(doc Document) ValidationReport {
	var report ValidationReport

	if doc.Base == nil && doc.Properties == nil {
		report.Errors = append(report.Errors, "document has neither base nor properties section")
	}

	for _, k := range sortedKeys(doc.Base) {
		if k == DarkThemeKey {
			continue
		}
		if !strings.HasPrefix(k, Prefix) {
			report.Errors = append(report.Errors, fmt.Sprintf("base key %q missing %q prefix", k, Prefix))
		}
	}
	for _, k := range sortedKeys(doc.Properties) {
		if !strings.HasPrefix(k, Prefix) {
			report.Errors = append(report.Errors, fmt.Sprintf("properties key %q missing %q prefix", k, Prefix))
		}
	}

	return report
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
