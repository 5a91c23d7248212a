// Package swatch renders token color scales as ANSI swatches for
// terminal preview.
package swatch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"themeplane/tokens"
)

const labelWidth = 26

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(labelWidth)
	tagStyle   = lipgloss.NewStyle().Faint(true)
)

// Block renders one color cell.
func Block(c tokens.RGB) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("   ")
}

// Row renders a labeled run of color cells.
func Row(label string, colors []tokens.RGB) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(label))
	for _, c := range colors {
		b.WriteString(Block(c))
	}
	return b.String()
}

// Header renders the selection line shown above the swatch rows.
func Header(theme, variant string, dark bool) string {
	mode := "light"
	if dark {
		mode = "dark"
	}
	return lipgloss.NewStyle().Bold(true).Render(theme+"/"+variant) +
		" " + tagStyle.Render("("+mode+")")
}

// Scales renders every scale-producing role present in the merged document,
// neutral first, reading the expanded values back rather than regenerating
// them.
func Scales(m tokens.Merged) string {
	var rows []string

	if row, ok := scaleRow(m, tokens.NeutralRole, tokens.NeutralScalePoints); ok {
		rows = append(rows, row)
	}
	for _, role := range tokens.ScaleRoles {
		if row, ok := scaleRow(m, role, tokens.RoleScalePoints); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func scaleRow(m tokens.Merged, role string, points int) (string, bool) {
	if _, ok := m.Base[role]; !ok {
		return "", false
	}

	colors := make([]tokens.RGB, 0, points)
	for i := 0; i < points; i++ {
		c, err := tokens.ParseRGB(m.Base[fmt.Sprintf("%s-%d", role, i)])
		if err != nil {
			return "", false
		}
		colors = append(colors, c)
	}
	return Row(role, colors), true
}
