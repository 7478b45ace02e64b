// Package theme provides the color palettes used to render status output.
package theme

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/lazycvs/internal/models"
)

// Theme defines the colors lazycvs prints with.
type Theme struct {
	Name      string
	Accent    lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	DirFg     lipgloss.Color
	// Modes colors each status code, indexed by models.Mode.
	Modes [6]lipgloss.Color
}

// Theme names.
const (
	DraculaName        = "dracula"
	DraculaLightName   = "dracula-light"
	NordName           = "nord"
	SolarizedLightName = "solarized-light"

	DefaultName = DraculaName
)

var themes = map[string]*Theme{
	DraculaName: {
		Name:      DraculaName,
		Accent:    lipgloss.Color("#BD93F9"),
		MutedFg:   lipgloss.Color("#6272A4"),
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
		DirFg:     lipgloss.Color("#8BE9FD"),
		Modes: [6]lipgloss.Color{
			models.ModeUnknown:    "#6272A4",
			models.ModeAdded:      "#50FA7B",
			models.ModeConflicted: "#FF5555",
			models.ModeModified:   "#F1FA8C",
			models.ModeMissing:    "#FFB86C",
			models.ModeRemoved:    "#FF79C6",
		},
	},
	DraculaLightName: {
		Name:      DraculaLightName,
		Accent:    lipgloss.Color("#7C3AED"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#059669"),
		WarnFg:    lipgloss.Color("#D97706"),
		ErrorFg:   lipgloss.Color("#DC2626"),
		DirFg:     lipgloss.Color("#0891B2"),
		Modes: [6]lipgloss.Color{
			models.ModeUnknown:    "#6E7781",
			models.ModeAdded:      "#059669",
			models.ModeConflicted: "#DC2626",
			models.ModeModified:   "#CA8A04",
			models.ModeMissing:    "#D97706",
			models.ModeRemoved:    "#DB2777",
		},
	},
	NordName: {
		Name:      NordName,
		Accent:    lipgloss.Color("#88C0D0"),
		MutedFg:   lipgloss.Color("#4C566A"),
		TextFg:    lipgloss.Color("#ECEFF4"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
		DirFg:     lipgloss.Color("#81A1C1"),
		Modes: [6]lipgloss.Color{
			models.ModeUnknown:    "#4C566A",
			models.ModeAdded:      "#A3BE8C",
			models.ModeConflicted: "#BF616A",
			models.ModeModified:   "#EBCB8B",
			models.ModeMissing:    "#D08770",
			models.ModeRemoved:    "#B48EAD",
		},
	},
	SolarizedLightName: {
		Name:      SolarizedLightName,
		Accent:    lipgloss.Color("#268BD2"),
		MutedFg:   lipgloss.Color("#93A1A1"),
		TextFg:    lipgloss.Color("#586E75"),
		SuccessFg: lipgloss.Color("#859900"),
		WarnFg:    lipgloss.Color("#CB4B16"),
		ErrorFg:   lipgloss.Color("#DC322F"),
		DirFg:     lipgloss.Color("#2AA198"),
		Modes: [6]lipgloss.Color{
			models.ModeUnknown:    "#93A1A1",
			models.ModeAdded:      "#859900",
			models.ModeConflicted: "#DC322F",
			models.ModeModified:   "#B58900",
			models.ModeMissing:    "#CB4B16",
			models.ModeRemoved:    "#D33682",
		},
	},
}

// GetTheme returns a theme by name, or the default one if not found.
func GetTheme(name string) *Theme {
	if t, ok := themes[Normalize(name)]; ok {
		return t
	}
	return themes[DefaultName]
}

// Normalize returns the canonical theme name, or "" when unsupported.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := themes[name]; ok {
		return name
	}
	return ""
}

// AvailableThemes returns the supported theme names, sorted.
func AvailableThemes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ModeColor returns the color for a status mode.
func (t *Theme) ModeColor(m models.Mode) lipgloss.Color {
	if !m.Valid() {
		return t.TextFg
	}
	return t.Modes[m]
}
