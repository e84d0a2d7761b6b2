package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	header      lipgloss.Style
	quota       lipgloss.Style
	quotaEmpty  lipgloss.Style
	userLabel   lipgloss.Style
	botLabel    lipgloss.Style
	userText    lipgloss.Style
	pending     lipgloss.Style
	noticeInfo  lipgloss.Style
	noticeError lipgloss.Style
	disabled    lipgloss.Style
	spinner     lipgloss.Style
}

func newStyles(dark bool) styles {
	if !dark {
		return styles{
			header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			quota:       lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
			quotaEmpty:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
			userLabel:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("28")),
			botLabel:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			userText:    lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
			pending:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
			noticeInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("31")),
			noticeError: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
			disabled:    lipgloss.NewStyle().Faint(true),
			spinner:     lipgloss.NewStyle().Foreground(lipgloss.Color("25")),
		}
	}

	return styles{
		header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		quota:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		quotaEmpty:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		userLabel:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		botLabel:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		userText:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		pending:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		noticeInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		noticeError: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		disabled:    lipgloss.NewStyle().Faint(true),
		spinner:     lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
	}
}

func newSpinner(s styles) spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(s.spinner),
	)
}

// newMarkdownRenderer builds the glamour renderer for assistant replies.
// A nil renderer means replies are shown as plain text.
func newMarkdownRenderer(dark bool, width int) *glamour.TermRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	if width < 20 {
		width = 20
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}

	return renderer
}
