package theme

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"themeplane/tokens"
)

// Format identifies the on-disk encoding of a token document.
type Format int

const (
	FormatJSON Format = iota
	FormatTOML
)

// FormatForPath maps a file extension to its document format.
func FormatForPath(p string) (Format, bool) {
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	}
	return 0, false
}

type rawDocument struct {
	Base       map[string]any `json:"base" toml:"base"`
	Properties map[string]any `json:"properties" toml:"properties"`
	Dark       *bool          `json:"dark" toml:"dark"`
}

// DecodeDocument parses one token document. Section values are normalized to
// strings; entries whose value has no scalar form are dropped and reported in
// the returned warnings (sorted for stable output). The legacy "dark-theme"
// marker inside base is converted to the document's Dark field and removed;
// an explicit top-level dark field wins over the marker when both appear.
// Unknown top-level keys are ignored.
func DecodeDocument(data []byte, format Format) (tokens.Document, []string, error) {
	var raw rawDocument
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return tokens.Document{}, nil, fmt.Errorf("decode json document: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return tokens.Document{}, nil, fmt.Errorf("decode toml document: %w", err)
		}
	default:
		return tokens.Document{}, nil, fmt.Errorf("unsupported document format %d", format)
	}

	doc := tokens.Document{Dark: raw.Dark}
	var warnings []string

	if raw.Base != nil {
		doc.Base = make(map[string]string, len(raw.Base))
		for k, v := range raw.Base {
			if k == tokens.DarkThemeKey {
				dark, ok := boolish(v)
				if !ok {
					warnings = append(warnings, fmt.Sprintf("base key %q: unrecognized marker value %v", k, v))
					continue
				}
				if raw.Dark == nil {
					doc.Dark = &dark
				}
				continue
			}
			s, ok := scalarString(v)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("base key %q: dropped non-scalar value", k))
				continue
			}
			doc.Base[k] = s
		}
	}

	if raw.Properties != nil {
		doc.Properties = make(map[string]string, len(raw.Properties))
		for k, v := range raw.Properties {
			s, ok := scalarString(v)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("properties key %q: dropped non-scalar value", k))
				continue
			}
			doc.Properties[k] = s
		}
	}

	sort.Strings(warnings)
	return doc, warnings, nil
}

func boolish(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "true" || s == "1" || s == "yes" {
			return true, true
		}
		if s == "false" || s == "0" || s == "no" {
			return false, true
		}
	case float64:
		return t != 0, true
	case int64:
		return t != 0, true
	}
	return false, false
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

// displayName turns a slug like "high-contrast" into "High Contrast".
func displayName(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
