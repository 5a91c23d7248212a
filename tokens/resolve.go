package tokens

import "strings"

// ResolveValue rewrites a reference value into a var() expression and leaves
// literal values untouched. References are never inlined to their target's
// value; the consuming style layer performs the lookup. Serializers apply
// this to properties entries only, never to base entries.
func ResolveValue(value string) string {
	if strings.HasPrefix(value, Prefix) {
		return "var(" + value + ")"
	}
	return value
}
