// Package theme provides the color scheme for the interactive menu,
// detected from the user's terminal configuration (Alacritty or foot)
// with environment variable overrides.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette holds the menu color scheme.
type Palette struct {
	BG       string // background
	FG       string // foreground (primary text)
	Muted    string // column headers, help line
	AccentBg string // selection background
	Error    string // per-record failures
}

// DefaultPalette returns the fallback amber-on-dark theme.
func DefaultPalette() Palette {
	return Palette{
		BG:       "#0a0a0a",
		FG:       "#d4a017",
		Muted:    "#6b6b4f",
		AccentBg: "#1a1a14",
		Error:    "#ff6b6b",
	}
}

// Styles holds the lipgloss styles derived from a palette.
type Styles struct {
	Header   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewStyles creates styles from a palette.
func NewStyles(p Palette) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(p.Muted)),

		Row: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.FG)),

		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.FG)).
			Background(lipgloss.Color(p.AccentBg)).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Error)),

		HelpKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),

		HelpDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.FG)),
	}
}

// Load detects the palette and derives styles from it.
func Load() Styles {
	return NewStyles(Detect())
}
