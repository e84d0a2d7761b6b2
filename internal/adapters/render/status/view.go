package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/dchat/internal/application"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

type RenderOptions struct {
	Now  time.Time
	Dark bool
}

// Render draws the quota card for the logged-in user.
func Render(status application.Status, opts RenderOptions) string {
	return renderView(status, opts, newStyles(opts.Dark))
}

func renderView(status application.Status, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("dchat"),
		s.header.Render(fmt.Sprintf("theme: %s", themeLabel(opts.Dark))),
		s.section.Render(s.user.Render(fmt.Sprintf("Welcome, %s!", strings.TrimSpace(status.Name)))),
		quotaLine(status, opts, s),
	}

	if !status.RegisteredAt.IsZero() {
		lines = append(lines, s.detail.Render(fmt.Sprintf("registered: %s", formatRegistered(status.RegisteredAt, opts.Now))))
	}
	if !status.CanSend() {
		lines = append(lines, s.warning.Render(fmt.Sprintf("daily limit reached, new messages at %02d:00", status.ResetHour)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func quotaLine(status application.Status, opts RenderOptions, s styles) string {
	leftPercent := clampPercent(100 - status.UsedPercent())
	bar := renderProgressBar(status.UsedPercent(), barWidth, s)
	label := s.limitKey.Render("daily limit:")
	meta := lipgloss.NewStyle().
		Foreground(interpolateColor(leftPercent, 0, 100, s)).
		Render(fmt.Sprintf("%d/%d left", status.RemainingUsage, status.QuotaTotal))

	reset := lipgloss.NewStyle().
		Foreground(resetTimeColor(status.NextResetAt, opts.Now, s)).
		Render(fmt.Sprintf("(%s)", formatResetRelative(status.NextResetAt, opts.Now)))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		bar,
		" ",
		meta,
		" ",
		reset,
	)
}

func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	leftFraction := (100.0 - used) / 100.0
	filled := int(math.Round(float64(width) * leftFraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func themeLabel(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func formatRegistered(at, now time.Time) string {
	if !now.IsZero() {
		at = at.In(now.Location())
	}

	return at.Format("02 Jan 2006 15:04")
}

func formatResetAt(resetsAt, now time.Time) string {
	if resetsAt.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return resetsAt.Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := resetsAt.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return resetsAt.Format("15:04")
	}

	return resetsAt.Format("15:04 on 02 Jan")
}

func formatResetRelative(resetsAt, now time.Time) string {
	if now.IsZero() || resetsAt.IsZero() {
		return "resets " + formatResetAt(resetsAt, now)
	}

	if !resetsAt.After(now) {
		return "reset now"
	}

	remaining := resetsAt.Sub(now)
	if remaining < time.Hour {
		minutes := int(math.Ceil(remaining.Minutes()))
		suffix := "minutes"
		if minutes == 1 {
			suffix = "minute"
		}
		return fmt.Sprintf("resets in %d %s (%s)", minutes, suffix, resetsAt.Format("15:04"))
	}

	hours := int(math.Ceil(remaining.Hours()))
	suffix := "hours"
	if hours == 1 {
		suffix = "hour"
	}

	return fmt.Sprintf("resets in %d %s (%s)", hours, suffix, resetsAt.Format("15:04"))
}

func interpolateColor(value, min, max float64, s styles) lipgloss.Color {
	if max == min {
		return lipgloss.Color(fmt.Sprintf("%d", int(s.rampTo)))
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	interpolated := s.rampFrom + (s.rampTo-s.rampFrom)*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}

// resetTimeColor brightens as the daily refill approaches.
func resetTimeColor(resetsAt, now time.Time, s styles) lipgloss.Color {
	if now.IsZero() || !resetsAt.After(now) {
		return lipgloss.Color(fmt.Sprintf("%d", int(s.rampTo)))
	}

	window := 24 * time.Hour
	inverted := window.Seconds() - resetsAt.Sub(now).Seconds()
	return interpolateColor(inverted, 0, window.Seconds(), s)
}
