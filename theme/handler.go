package theme

import (
	"encoding/json"
	"net/http"
	"strings"

	"themeplane/model"
)

// Handler handles theme-related HTTP requests.
type Handler struct {
	manager *Manager
	current func() model.Selection
}

// NewHandler creates a theme handler. current supplies the selection used
// when a request names no theme; it may be nil.
func NewHandler(manager *Manager, current func() model.Selection) *Handler {
	return &Handler{
		manager: manager,
		current: current,
	}
}

// HandleTheme serves the merged CSS for a theme and variant. Missing or
// unknown parameters fall back to the applied selection, then to the first
// theme. An optional scope parameter replaces the :root selector.
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	theme, variant := h.pickSelection(r.URL.Query().Get("theme"), r.URL.Query().Get("variant"))
	if theme == "" {
		http.Error(w, "no themes available", http.StatusNotFound)
		return
	}

	merged, _, err := h.manager.ResolveTheme(theme, variant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	css := RenderCSS(merged)
	if scope := r.URL.Query().Get("scope"); scope != "" {
		css = RenderCSSScoped(scope, merged)
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(css))
}

func (h *Handler) pickSelection(qTheme, qVariant string) (string, string) {
	theme := ""
	if qTheme != "" && h.manager.GetTheme(qTheme) != nil {
		theme = qTheme
	}
	if theme == "" && h.current != nil {
		if sel := h.current(); h.manager.GetTheme(sel.Theme) != nil {
			theme = sel.Theme
			if qVariant == "" {
				qVariant = sel.Variant
			}
		}
	}
	if theme == "" {
		names := h.manager.ListThemes()
		if len(names) == 0 {
			return "", ""
		}
		theme = names[0]
	}

	variant := h.manager.DefaultVariant(theme)
	if qVariant != "" {
		if info := h.manager.GetTheme(theme); info != nil {
			if _, ok := info.Variants[qVariant]; ok {
				variant = qVariant
			}
		}
	}

	return theme, variant
}

// HandleThemes returns the theme catalog with variants as JSON.
func (h *Handler) HandleThemes(w http.ResponseWriter, r *http.Request) {
	type VariantResponse struct {
		Name    string `json:"name"`
		Display string `json:"display"`
		Dark    bool   `json:"dark"`
		Accent  string `json:"accent,omitempty"`
	}
	type ThemeResponse struct {
		Name     string            `json:"name"`
		Display  string            `json:"display"`
		Default  string            `json:"default_variant"`
		Variants []VariantResponse `json:"variants"`
	}

	names := h.manager.ListThemes()
	resp := make([]ThemeResponse, 0, len(names))
	for _, name := range names {
		info := h.manager.GetTheme(name)
		if info == nil {
			continue
		}
		variants := h.manager.Variants(name)
		variantsResp := make([]VariantResponse, 0, len(variants))
		for _, v := range variants {
			variantsResp = append(variantsResp, VariantResponse{
				Name:    v.Name,
				Display: v.Display,
				Dark:    v.Dark,
				Accent:  v.Accent,
			})
		}
		resp = append(resp, ThemeResponse{
			Name:     name,
			Display:  info.Display,
			Default:  h.manager.DefaultVariant(name),
			Variants: variantsResp,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode themes", http.StatusInternalServerError)
		return
	}
}

// ThemeMenuHTML generates HTML for the theme selection menu.
func (h *Handler) ThemeMenuHTML(currentTheme string) string {
	var builder strings.Builder

	for _, name := range h.manager.ListThemes() {
		info := h.manager.GetTheme(name)
		if info == nil {
			continue
		}
		builder.WriteString(`<button data-theme="`)
		builder.WriteString(name)
		builder.WriteString(`"`)
		if name == currentTheme {
			builder.WriteString(` class="active"`)
		}
		builder.WriteString(`>`)
		builder.WriteString(info.Display)
		builder.WriteString(`</button>`)
	}

	return builder.String()
}

// VariantMenuHTML generates HTML for a theme's variant selection menu, with
// one accent dot per variant.
func (h *Handler) VariantMenuHTML(theme, currentVariant string) string {
	var builder strings.Builder

	for _, v := range h.manager.Variants(theme) {
		builder.WriteString(`<button data-variant="`)
		builder.WriteString(v.Name)
		builder.WriteString(`"`)
		if v.Name == currentVariant {
			builder.WriteString(` class="active"`)
		}
		builder.WriteString(`>`)
		if v.Accent != "" {
			builder.WriteString(`<i class="dot" style="background:`)
			builder.WriteString(v.Accent)
			builder.WriteString(`"></i> `)
		}
		builder.WriteString(v.Display)
		builder.WriteString(`</button>`)
	}

	return builder.String()
}
