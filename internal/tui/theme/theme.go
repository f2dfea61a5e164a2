// Package theme holds the colors and styles shared by the TUI screens.
package theme

import "github.com/charmbracelet/lipgloss"

// Colors is the palette. Adaptive colors pick a shade for light and dark
// terminals.
type Colors struct {
	Border             lipgloss.TerminalColor
	LightText          lipgloss.TerminalColor
	MutedText          lipgloss.TerminalColor
	SelectedBackground lipgloss.TerminalColor
	Green              lipgloss.TerminalColor
	Yellow             lipgloss.TerminalColor
	Orange             lipgloss.TerminalColor
	Red                lipgloss.TerminalColor
	Blue               lipgloss.TerminalColor
}

var DefaultColors = Colors{
	Border:             lipgloss.AdaptiveColor{Light: "#BCBCBC", Dark: "#4E4E4E"},
	LightText:          lipgloss.AdaptiveColor{Light: "#1C1C1C", Dark: "#EEEEEE"},
	MutedText:          lipgloss.AdaptiveColor{Light: "#808080", Dark: "#8A8A8A"},
	SelectedBackground: lipgloss.AdaptiveColor{Light: "#D7D7FF", Dark: "#3A3A5E"},
	Green:              lipgloss.AdaptiveColor{Light: "#008700", Dark: "#87D787"},
	Yellow:             lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"},
	Orange:             lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FFAF5F"},
	Red:                lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"},
	Blue:               lipgloss.AdaptiveColor{Light: "#005FD7", Dark: "#5FAFFF"},
}

// Theme is a set of ready made styles.
type Theme struct {
	Colors    Colors
	Header    lipgloss.Style
	Info      lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Highlight lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
}

var DefaultTheme = New(DefaultColors)

// New derives the styles from c.
func New(c Colors) Theme {
	return Theme{
		Colors:    c,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(c.Blue),
		Info:      lipgloss.NewStyle().Foreground(c.Blue),
		Muted:     lipgloss.NewStyle().Foreground(c.MutedText),
		Selected:  lipgloss.NewStyle().Foreground(c.LightText).Background(c.SelectedBackground),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(c.Orange),
		Success:   lipgloss.NewStyle().Foreground(c.Green),
		Warning:   lipgloss.NewStyle().Foreground(c.Yellow),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(c.Red),
	}
}
