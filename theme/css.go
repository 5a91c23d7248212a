package theme

import (
	"fmt"
	"sort"
	"strings"

	"themeplane/tokens"
)

// RenderCSS renders the merged document as a :root rule.
func RenderCSS(m tokens.Merged) string {
	return RenderCSSScoped(":root", m)
}

// RenderCSSScoped renders the merged document as custom properties under the
// given selector. Base entries are emitted raw in sorted key order, then
// properties entries with reference values rewritten to var() expressions.
// The legacy dark marker never reaches the output.
func RenderCSSScoped(selector string, m tokens.Merged) string {
	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {\n")

	for _, k := range sortedKeys(m.Base) {
		if k == tokens.DarkThemeKey {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s;\n", k, m.Base[k])
	}
	for _, k := range sortedKeys(m.Properties) {
		fmt.Fprintf(&b, "  %s: %s;\n", k, tokens.ResolveValue(m.Properties[k]))
	}

	b.WriteString("}\n")
	return b.String()
}

// FlatTokens flattens the merged document into a single name-to-value map,
// with the same per-section treatment as the CSS renderer. Useful for JSON
// and CSV exports where one value per token is wanted.
func FlatTokens(m tokens.Merged) map[string]string {
	flat := make(map[string]string, len(m.Base)+len(m.Properties))
	for k, v := range m.Base {
		if k == tokens.DarkThemeKey {
			continue
		}
		flat[k] = v
	}
	for k, v := range m.Properties {
		flat[k] = tokens.ResolveValue(v)
	}
	return flat
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
