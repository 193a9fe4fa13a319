package chart

import (
	"image/color"
	"strconv"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

// Theme names a color scheme.
type Theme string

// Supported themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Scheme is the set of colors a renderer needs. Every category owns a fixed
// color, so a mark looks the same whatever else is selected.
type Scheme struct {
	Background string
	Grid       string
	Axis       string
	Text       string
	TextMuted  string
	Categories [punctuation.NumCategories]string
}

// SchemeFor returns the colors of theme; unknown themes get the light scheme.
func SchemeFor(theme Theme) Scheme {
	if theme == ThemeDark {
		return darkScheme
	}

	return lightScheme
}

// CategoryColor is the hex color of cat, or the muted text color for a
// category outside the enumeration.
func (s Scheme) CategoryColor(cat punctuation.Category) string {
	if !cat.Valid() {
		return s.TextMuted
	}

	return s.Categories[cat]
}

// Indexed by punctuation.Category (alphabetical by name).
var lightScheme = Scheme{
	Background: "#ffffff",
	Grid:       "#e5e7eb",
	Axis:       "#9ca3af",
	Text:       "#1f2937",
	TextMuted:  "#6b7280",
	Categories: [punctuation.NumCategories]string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b",
		"#e377c2", "#7f7f7f", "#bcbd22", "#17becf", "#393b79", "#ad494a",
		"#637939", "#8c6d31", "#843c39", "#7b4173", "#3182bd", "#e6550d",
	},
}

var darkScheme = Scheme{
	Background: "#111827",
	Grid:       "#374151",
	Axis:       "#4b5563",
	Text:       "#e5e7eb",
	TextMuted:  "#9ca3af",
	Categories: [punctuation.NumCategories]string{
		"#60a5fa", "#fb923c", "#4ade80", "#f87171", "#c084fc", "#d6a77a",
		"#f9a8d4", "#d1d5db", "#facc15", "#22d3ee", "#818cf8", "#fca5a5",
		"#a3e635", "#fcd34d", "#fdba74", "#e879f9", "#38bdf8", "#f97316",
	},
}

// rgba converts "#rrggbb" to an opaque color; malformed input is black.
func rgba(hex string) color.Color {
	if len(hex) != len("#rrggbb") || hex[0] != '#' {
		return color.Black
	}

	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.Black
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
