package theme

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"themeplane/model"
)

// BuildSnapshot resolves a selection and captures it as a snapshot with a
// fresh id, the flattened token set and the rendered CSS.
func BuildSnapshot(m *Manager, theme, variant string) (model.Snapshot, error) {
	merged, _, err := m.ResolveTheme(theme, variant)
	if err != nil {
		return model.Snapshot{}, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("generate snapshot id: %w", err)
	}

	flat := FlatTokens(merged)
	return model.Snapshot{
		ID:             id.String(),
		Timestamp:      time.Now().UTC(),
		Theme:          theme,
		Variant:        variant,
		Dark:           merged.Dark,
		TokenCount:     len(flat),
		GeneratedCount: merged.Generated,
		Tokens:         flat,
		CSS:            RenderCSS(merged),
	}, nil
}
