package theme

import (
	"errors"
	"testing"
	"testing/fstest"

	"themeplane/tokens"
)

func testThemesFS() fstest.MapFS {
	return fstest.MapFS{
		"horizon/shape.json": &fstest.MapFile{Data: []byte(`{
			"base": {"--now-color--background": "250,250,250"},
			"properties": {
				"--now-radius--m": "8px",
				"--now-surface": "--now-color--neutral-2"
			}
		}`)},
		"horizon/typography.json": &fstest.MapFile{Data: []byte(`{
			"properties": {"--now-font--body": "14px"}
		}`)},
		"horizon/variants/light/colors.json": &fstest.MapFile{Data: []byte(`{
			"base": {
				"--now-color--primary": "61,74,80",
				"--now-color--neutral": "136,139,141",
				"--now-color--background": "10,10,10"
			},
			"properties": {"--now-surface": "--now-color--neutral-1"}
		}`)},
		"horizon/variants/dark/colors.json": &fstest.MapFile{Data: []byte(`{
			"base": {
				"dark-theme": true,
				"--now-color--primary": "120,144,156",
				"--now-color--neutral": "84,110,122"
			}
		}`)},
		"graphite/variants/dark/colors.toml": &fstest.MapFile{Data: []byte(`
dark = true

[base]
"--now-color--primary" = "38,50,56"

[properties]
"--now-font--body" = "13px"
`)},
		"empty-theme/notes.txt": &fstest.MapFile{Data: []byte("not a theme")},
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testThemesFS())
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}
	return m
}

func TestManagerDiscovery(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	got := m.ListThemes()
	want := []string{"graphite", "horizon"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ListThemes() = %v, want %v", got, want)
	}

	info := m.GetTheme("horizon")
	if info == nil {
		t.Fatal("GetTheme(horizon) = nil")
	}
	if info.Display != "Horizon" {
		t.Fatalf("Display = %q, want %q", info.Display, "Horizon")
	}
	if len(info.Variants) != 2 {
		t.Fatalf("horizon has %d variants, want 2", len(info.Variants))
	}
	if m.GetTheme("empty-theme") != nil {
		t.Fatal("theme without variants should be skipped")
	}
	if m.GetTheme("missing") != nil {
		t.Fatal("GetTheme(missing) should be nil")
	}
}

func TestResolveThemeSharedOverridesVariantColors(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	merged, reports, err := m.ResolveTheme("horizon", "light")
	if err != nil {
		t.Fatalf("ResolveTheme() unexpected error: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3 (colors, shape, typography)", len(reports))
	}

	// Variant colors merge first, so shared documents win on overlapping keys.
	if got := merged.Base["--now-color--background"]; got != "250,250,250" {
		t.Fatalf("background = %q, want shared value %q", got, "250,250,250")
	}
	if got := merged.Properties["--now-surface"]; got != "--now-color--neutral-2" {
		t.Fatalf("surface = %q, want shared value %q", got, "--now-color--neutral-2")
	}

	// Keys defined only on one side survive untouched.
	if got := merged.Base["--now-color--primary"]; got != "61,74,80" {
		t.Fatalf("primary = %q, want %q", got, "61,74,80")
	}
	if got := merged.Properties["--now-font--body"]; got != "14px" {
		t.Fatalf("font = %q, want %q", got, "14px")
	}
}

func TestResolveThemeExpandsScales(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	merged, _, err := m.ResolveTheme("horizon", "light")
	if err != nil {
		t.Fatalf("ResolveTheme() unexpected error: %v", err)
	}

	if merged.Generated != 26 {
		t.Fatalf("Generated = %d, want 26 (neutral ramp + primary ladder)", merged.Generated)
	}
	if got := merged.Base["--now-color--primary-0"]; got != "144,152,155" {
		t.Fatalf("primary-0 = %q, want %q", got, "144,152,155")
	}
	if got := merged.Base["--now-color--neutral-0"]; got != "255,255,255" {
		t.Fatalf("neutral-0 = %q, want %q", got, "255,255,255")
	}
	if got := merged.Base["--now-color--neutral-21"]; got != "0,0,0" {
		t.Fatalf("neutral-21 = %q, want %q", got, "0,0,0")
	}
}

func TestResolveThemeUnknown(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	if _, _, err := m.ResolveTheme("missing", "light"); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("error = %v, want ErrUnknownTheme", err)
	}
	if _, _, err := m.ResolveTheme("horizon", "sepia"); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("error = %v, want ErrUnknownVariant", err)
	}
}

func TestResolveThemeDarkFlag(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	light, _, err := m.ResolveTheme("horizon", "light")
	if err != nil {
		t.Fatalf("ResolveTheme(light) unexpected error: %v", err)
	}
	if light.Dark {
		t.Fatal("light variant resolved dark")
	}

	dark, _, err := m.ResolveTheme("horizon", "dark")
	if err != nil {
		t.Fatalf("ResolveTheme(dark) unexpected error: %v", err)
	}
	if !dark.Dark {
		t.Fatal("legacy marker did not set dark")
	}
	if _, ok := dark.Base["dark-theme"]; ok {
		t.Fatal("legacy marker leaked into merged base")
	}

	info := m.GetTheme("horizon")
	if !info.Variants["dark"].Dark || info.Variants["light"].Dark {
		t.Fatalf("variant metadata dark flags wrong: %+v", info.Variants)
	}
}

func TestResolveThemeTOMLVariant(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	merged, _, err := m.ResolveTheme("graphite", "dark")
	if err != nil {
		t.Fatalf("ResolveTheme() unexpected error: %v", err)
	}
	if !merged.Dark {
		t.Fatal("toml dark field not applied")
	}
	if got := merged.Base["--now-color--primary-1"]; got != "38,50,56" {
		t.Fatalf("primary-1 = %q, want %q", got, "38,50,56")
	}
	if got := merged.Properties["--now-font--body"]; got != "13px" {
		t.Fatalf("font = %q, want %q", got, "13px")
	}
}

func TestResolveThemeFreshPerCall(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	first, _, err := m.ResolveTheme("horizon", "light")
	if err != nil {
		t.Fatalf("ResolveTheme() unexpected error: %v", err)
	}
	first.Base["--now-color--primary"] = "0,0,0"
	first.Properties["--now-surface"] = "tainted"

	second, _, err := m.ResolveTheme("horizon", "light")
	if err != nil {
		t.Fatalf("ResolveTheme() unexpected error: %v", err)
	}
	if got := second.Base["--now-color--primary"]; got != "61,74,80" {
		t.Fatalf("primary = %q after earlier mutation, want %q", got, "61,74,80")
	}
	if got := second.Properties["--now-surface"]; got != "--now-color--neutral-2" {
		t.Fatalf("surface = %q after earlier mutation, want %q", got, "--now-color--neutral-2")
	}
}

func TestDefaultVariant(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	if got := m.DefaultVariant("horizon"); got != "light" {
		t.Fatalf("DefaultVariant(horizon) = %q, want %q", got, "light")
	}
	if got := m.DefaultVariant("graphite"); got != "dark" {
		t.Fatalf("DefaultVariant(graphite) = %q, want %q", got, "dark")
	}
	if got := m.DefaultVariant("missing"); got != "" {
		t.Fatalf("DefaultVariant(missing) = %q, want empty", got)
	}
}

func TestVariantsDefaultFirst(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	variants := m.Variants("horizon")
	if len(variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(variants))
	}
	if variants[0].Name != "light" || variants[1].Name != "dark" {
		t.Fatalf("variant order = [%s, %s], want default first", variants[0].Name, variants[1].Name)
	}
	if variants[0].Display != "Light" {
		t.Fatalf("Display = %q, want %q", variants[0].Display, "Light")
	}
}

func TestVariantAccent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	info := m.GetTheme("horizon")
	if got := info.Variants["light"].Accent; got != "#3d4a50" {
		t.Fatalf("accent = %q, want %q", got, "#3d4a50")
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	t.Parallel()

	fsys := testThemesFS()
	m, err := NewManager(fsys)
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}
	if m.GetTheme("midnight") != nil {
		t.Fatal("midnight should not exist yet")
	}

	fsys["midnight/variants/dark/colors.json"] = &fstest.MapFile{Data: []byte(`{
		"base": {"dark-theme": true, "--now-color--primary": "0,30,60"}
	}`)}
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload() unexpected error: %v", err)
	}

	if m.GetTheme("midnight") == nil {
		t.Fatal("midnight missing after reload")
	}
	merged, _, err := m.ResolveTheme("midnight", "dark")
	if err != nil {
		t.Fatalf("ResolveTheme() unexpected error: %v", err)
	}
	if !merged.Dark {
		t.Fatal("reloaded variant lost dark flag")
	}
}

func TestResolveThemeMalformedRoleIsolated(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"busted/variants/light/colors.json": &fstest.MapFile{Data: []byte(`{
			"base": {
				"--now-color--primary": "not-a-color",
				"--now-color--secondary": "61,74,80"
			}
		}`)},
	}
	m, err := NewManager(fsys)
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}

	merged, _, err := m.ResolveTheme("busted", "light")
	if err != nil {
		t.Fatalf("ResolveTheme() should not fail on a malformed role: %v", err)
	}
	if _, ok := merged.Base["--now-color--primary-0"]; ok {
		t.Fatal("malformed role produced ramp entries")
	}
	if got := merged.Base["--now-color--secondary-1"]; got != "61,74,80" {
		t.Fatalf("healthy role ramp missing: secondary-1 = %q", got)
	}
	if got := merged.Base["--now-color--primary"]; got != "not-a-color" {
		t.Fatalf("original value = %q, want preserved", got)
	}
}

func TestManagerValidationIsAdvisory(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sloppy/variants/light/colors.json": &fstest.MapFile{Data: []byte(`{
			"base": {"bare-key": "1,2,3", "--now-color--text": "9,9,9"}
		}`)},
	}
	m, err := NewManager(fsys)
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}

	merged, reports, err := m.ResolveTheme("sloppy", "light")
	if err != nil {
		t.Fatalf("ResolveTheme() unexpected error: %v", err)
	}
	if len(reports) != 1 || reports[0].Valid() {
		t.Fatalf("expected one failing report, got %+v", reports)
	}
	if got := merged.Base["bare-key"]; got != "1,2,3" {
		t.Fatal("invalid document was not merged as-is")
	}
}

func TestAccentForFallsBackToNeutral(t *testing.T) {
	t.Parallel()

	m := tokens.Merged{Base: map[string]string{tokens.NeutralRole: "136,139,141"}}
	if got := accentFor(m); got != "#888b8d" {
		t.Fatalf("accentFor() = %q, want %q", got, "#888b8d")
	}
	if got := accentFor(tokens.Merged{}); got != "" {
		t.Fatalf("accentFor(empty) = %q, want empty", got)
	}
}
