package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	user       lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	limitKey   lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	rampFrom   float64
	rampTo     float64
}

// newStyles picks a palette for the terminal background. The light palette
// inverts the greyscale ramp so faded text stays readable.
func newStyles(dark bool) styles {
	if !dark {
		return styles{
			title:      lipgloss.NewStyle().Bold(true),
			header:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			user:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
			warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
			section:    lipgloss.NewStyle().MarginTop(1),
			limitKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("31")),
			barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
			rampFrom:   248,
			rampTo:     232,
		}
	}

	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		user:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		limitKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		rampFrom:   240,
		rampTo:     255,
	}
}
