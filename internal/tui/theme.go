package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/city-pulse-service/internal/render"
)

// Theme defines the color palette for the TUI. All colors use lipgloss ANSI
// 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	FocusBorder      lipgloss.Color
	HelpText         lipgloss.Color

	ToastError   lipgloss.Color
	ToastSuccess lipgloss.Color

	// Category colors keyed by render icon key.
	Categories map[string]lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("242"),
	HeaderForeground: lipgloss.Color("39"),
	BorderColor:      lipgloss.Color("238"),
	FocusBorder:      lipgloss.Color("39"),
	HelpText:         lipgloss.Color("241"),
	ToastError:       lipgloss.Color("196"),
	ToastSuccess:     lipgloss.Color("42"),
	Categories: map[string]lipgloss.Color{
		render.IconTraffic:        lipgloss.Color("208"),
		render.IconCivicIssue:     lipgloss.Color("75"),
		render.IconCommunityEvent: lipgloss.Color("141"),
		render.IconSafetyHazard:   lipgloss.Color("196"),
		render.IconOther:          lipgloss.Color("250"),
	},
}

// CategoryColor returns the color for an icon key.
func (theme Theme) CategoryColor(icon string) lipgloss.Color {
	if color, ok := theme.Categories[icon]; ok {
		return color
	}
	return theme.NormalText
}

// Marker glyphs keyed by render icon key.
var glyphs = map[string]rune{
	render.IconTraffic:        'T',
	render.IconCivicIssue:     'C',
	render.IconCommunityEvent: 'E',
	render.IconSafetyHazard:   '!',
	render.IconOther:          'o',
}

func glyph(icon string) rune {
	if g, ok := glyphs[icon]; ok {
		return g
	}
	return 'o'
}
