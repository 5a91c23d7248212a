package theme

// ThemeInfo describes one discovered theme and its variants.
type ThemeInfo struct {
	Name     string
	Display  string
	Variants map[string]VariantInfo
}

// VariantInfo describes one variant of a theme.
type VariantInfo struct {
	Name    string
	Display string
	Dark    bool
	Accent  string
}
