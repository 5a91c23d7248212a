package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"sync"

	"themeplane/tokens"
)

var (
	ErrUnknownTheme   = errors.New("unknown theme")
	ErrUnknownVariant = errors.New("unknown variant")
)

// sourceDoc is one parsed token document plus its origin path for logging.
type sourceDoc struct {
	path string
	doc  tokens.Document
}

type themeEntry struct {
	info     *ThemeInfo
	shared   []sourceDoc
	variants map[string]sourceDoc
}

// Manager discovers themes on a filesystem and resolves (theme, variant)
// pairs into merged token documents. The filesystem root holds one directory
// per theme: variant color documents under {theme}/variants/{variant}/ and
// shared documents directly under {theme}/.
type Manager struct {
	fsys fs.FS

	mu         sync.RWMutex
	themesMap  map[string]*themeEntry
	themesList []string
}

// NewManager creates a manager over fsys and performs the initial scan.
func NewManager(fsys fs.FS) (*Manager, error) {
	m := &Manager{fsys: fsys}
	if err := m.Reload(); err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}
	return m, nil
}

// Reload rescans the filesystem and replaces the catalog wholesale. Catalog
// values handed out before the swap stay valid; they are never mutated.
func (m *Manager) Reload() error {
	themesMap, themesList, err := m.scan()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.themesMap = themesMap
	m.themesList = themesList
	m.mu.Unlock()

	log.Printf("Loaded %d themes:", len(themesList))
	for _, name := range themesList {
		entry := themesMap[name]
		variantNames := make([]string, 0, len(entry.variants))
		for v := range entry.variants {
			variantNames = append(variantNames, v)
		}
		sort.Strings(variantNames)
		log.Printf("  - %s: %d variants (%s), %d shared documents",
			name, len(entry.variants), strings.Join(variantNames, ", "), len(entry.shared))
	}

	return nil
}

func (m *Manager) scan() (map[string]*themeEntry, []string, error) {
	rootEntries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("read themes directory: %w", err)
	}

	themesMap := make(map[string]*themeEntry)
	themesList := []string{}

	for _, rootEntry := range rootEntries {
		if !rootEntry.IsDir() {
			continue
		}
		name := rootEntry.Name()

		entry, err := m.scanTheme(name)
		if err != nil {
			log.Printf("Warning: skipping theme %s: %v", name, err)
			continue
		}
		if len(entry.variants) == 0 {
			log.Printf("Warning: no variants found in theme %s", name)
			continue
		}

		themesMap[name] = entry
		themesList = append(themesList, name)
	}

	sort.Strings(themesList)
	return themesMap, themesList, nil
}

func (m *Manager) scanTheme(name string) (*themeEntry, error) {
	entry := &themeEntry{
		info: &ThemeInfo{
			Name:     name,
			Display:  displayName(name),
			Variants: make(map[string]VariantInfo),
		},
		variants: make(map[string]sourceDoc),
	}

	files, err := fs.ReadDir(m.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read theme directory: %w", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		src, ok := m.loadDocument(path.Join(name, f.Name()))
		if !ok {
			continue
		}
		entry.shared = append(entry.shared, src)
	}
	sortShared(entry.shared)

	variantDirs, err := fs.ReadDir(m.fsys, path.Join(name, "variants"))
	if err != nil {
		return nil, fmt.Errorf("read variants directory: %w", err)
	}
	for _, vd := range variantDirs {
		if !vd.IsDir() {
			continue
		}
		variant := vd.Name()
		colors, ok := m.loadVariantColors(name, variant)
		if !ok {
			log.Printf("Warning: no colors document in theme %s variant %s", name, variant)
			continue
		}
		entry.variants[variant] = colors

		merged, err := tokens.Merge(orderedDocs(colors, entry.shared))
		if err != nil {
			log.Printf("Warning: theme %s variant %s: %v", name, variant, err)
		}
		entry.info.Variants[variant] = VariantInfo{
			Name:    variant,
			Display: displayName(variant),
			Dark:    merged.Dark,
			Accent:  accentFor(merged),
		}
	}

	return entry, nil
}

func (m *Manager) loadDocument(p string) (sourceDoc, bool) {
	format, ok := FormatForPath(p)
	if !ok {
		return sourceDoc{}, false
	}

	data, err := fs.ReadFile(m.fsys, p)
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", p, err)
		return sourceDoc{}, false
	}

	doc, warnings, err := DecodeDocument(data, format)
	if err != nil {
		log.Printf("Warning: failed to parse %s: %v", p, err)
		return sourceDoc{}, false
	}
	for _, w := range warnings {
		log.Printf("Warning: %s: %s", p, w)
	}

	// Shape findings are advisory. The document is still merged and served.
	if report := tokens.Validate(doc); !report.Valid() {
		for _, e := range report.Errors {
			log.Printf("Warning: %s: %s", p, e)
		}
	}

	return sourceDoc{path: p, doc: doc}, true
}

func (m *Manager) loadVariantColors(theme, variant string) (sourceDoc, bool) {
	for _, candidate := range []string{"colors.json", "colors.toml"} {
		p := path.Join(theme, "variants", variant, candidate)
		if _, err := fs.Stat(m.fsys, p); err != nil {
			continue
		}
		return m.loadDocument(p)
	}
	return sourceDoc{}, false
}

// Shared documents merge after variant colors in a fixed order: shape, then
// typography, then the rest by file name. Later documents override earlier
// keys, so shared values win over variant colors on overlapping names.
func sortShared(docs []sourceDoc) {
	rank := func(d sourceDoc) int {
		switch strings.TrimSuffix(path.Base(d.path), path.Ext(d.path)) {
		case "shape":
			return 0
		case "typography":
			return 1
		}
		return 2
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := rank(docs[i]), rank(docs[j])
		if ri != rj {
			return ri < rj
		}
		return docs[i].path < docs[j].path
	})
}

func orderedDocs(colors sourceDoc, shared []sourceDoc) []tokens.Document {
	docs := make([]tokens.Document, 0, len(shared)+1)
	docs = append(docs, colors.doc)
	for _, s := range shared {
		docs = append(docs, s.doc)
	}
	return docs
}

// accentFor picks a representative color for menu dots.
func accentFor(m tokens.Merged) string {
	for _, role := range []string{"--now-color--primary", tokens.NeutralRole} {
		raw, ok := m.Base[role]
		if !ok {
			continue
		}
		if c, err := tokens.ParseRGB(raw); err == nil {
			return c.Hex()
		}
	}
	return ""
}

// GetTheme returns a theme by name, or nil if not found.
func (m *Manager) GetTheme(name string) *ThemeInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.themesMap[name]
	if !ok {
		return nil
	}
	return entry.info
}

// ListThemes returns all theme names, sorted.
func (m *Manager) ListThemes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.themesList...)
}

// DefaultVariant returns the variant served when none is requested: "light"
// when the theme has it, otherwise the first variant alphabetically. Unknown
// themes return "".
func (m *Manager) DefaultVariant(theme string) string {
	info := m.GetTheme(theme)
	if info == nil || len(info.Variants) == 0 {
		return ""
	}
	if _, ok := info.Variants["light"]; ok {
		return "light"
	}
	names := make([]string, 0, len(info.Variants))
	for name := range info.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

// Variants returns a theme's variants with the default first, then the rest
// alphabetically.
func (m *Manager) Variants(theme string) []VariantInfo {
	info := m.GetTheme(theme)
	if info == nil {
		return nil
	}

	def := m.DefaultVariant(theme)
	names := make([]string, 0, len(info.Variants))
	for name := range info.Variants {
		if name != def {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{def}, names...)

	variants := make([]VariantInfo, 0, len(names))
	for _, name := range names {
		variants = append(variants, info.Variants[name])
	}
	return variants
}

// ResolveTheme merges the documents for one (theme, variant) pair into a
// fresh document: variant colors first, then the theme's shared documents.
// The returned reports carry each source document's shape findings in that
// same order; they are advisory and never block resolution. Scale expansion
// failures are logged and leave the rest of the document intact.
func (m *Manager) ResolveTheme(theme, variant string) (tokens.Merged, []tokens.ValidationReport, error) {
	m.mu.RLock()
	entry, ok := m.themesMap[theme]
	if !ok {
		m.mu.RUnlock()
		return tokens.Merged{}, nil, fmt.Errorf("%w: %s", ErrUnknownTheme, theme)
	}
	colors, ok := entry.variants[variant]
	if !ok {
		m.mu.RUnlock()
		return tokens.Merged{}, nil, fmt.Errorf("%w: %s/%s", ErrUnknownVariant, theme, variant)
	}
	sources := append([]sourceDoc{colors}, entry.shared...)
	m.mu.RUnlock()

	reports := make([]tokens.ValidationReport, 0, len(sources))
	docs := make([]tokens.Document, 0, len(sources))
	for _, src := range sources {
		reports = append(reports, tokens.Validate(src.doc))
		docs = append(docs, src.doc)
	}

	merged, err := tokens.Merge(docs)
	if err != nil {
		log.Printf("Warning: theme %s variant %s: %v", theme, variant, err)
	}
	return merged, reports, nil
}
