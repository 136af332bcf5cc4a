package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/city-pulse-service/internal/render"
)

// Map grid size in cells, excluding the border.
const (
	mapColumns = 48
	mapRows    = 16
)

// cell is one plotted marker in grid coordinates.
type cell struct {
	row, column int
	icon        string
}

// plot maps percentage marker positions onto a columns x rows grid. Markers
// arrive newest first; when two share a cell the newest wins.
func plot(markers []render.Marker, columns, rows int) map[[2]int]cell {
	cells := make(map[[2]int]cell, len(markers))
	for i := len(markers) - 1; i >= 0; i-- {
		m := markers[i]
		row := gridIndex(m.Top, rows)
		column := gridIndex(m.Left, columns)
		cells[[2]int{row, column}] = cell{row: row, column: column, icon: m.Icon}
	}
	return cells
}

func gridIndex(percent float64, size int) int {
	index := int(math.Round(percent / 100 * float64(size-1)))
	return max(0, min(size-1, index))
}

// renderMap draws the marker grid inside a border.
func (model Model) renderMap() string {
	cells := plot(model.view.Map.Markers, mapColumns, mapRows)
	empty := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var builder strings.Builder
	for row := range mapRows {
		for column := range mapColumns {
			c, ok := cells[[2]int{row, column}]
			if !ok {
				builder.WriteString(empty.Render("·"))
				continue
			}
			style := lipgloss.NewStyle().Foreground(model.theme.CategoryColor(c.icon)).Bold(true)
			builder.WriteString(style.Render(string(glyph(c.icon))))
		}
		if row < mapRows-1 {
			builder.WriteByte('\n')
		}
	}

	legend := lipgloss.NewStyle().Foreground(model.theme.HelpText).
		Render("T traffic  C civic  E community  ! hazard  o other")
	grid := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Render(builder.String())
	return lipgloss.JoinVertical(lipgloss.Left, grid, legend)
}
