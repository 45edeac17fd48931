package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/lexis/internal/audio"
)

const progressWidth = 12

func renderStatusBar(streak int, transport string, hints string, width int) string {
	streakAccentStyle := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	left := ""
	if streak >= 1 {
		left = fmt.Sprintf(" %s %dd", streakAccentStyle.Render("streak"), streak)
	}
	if transport != "" {
		if left != "" {
			left += " ·"
		}
		left += " " + transport
	}

	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

// renderTransport describes narration playback: generating, ready, or the
// position within a loaded buffer.
func renderTransport(c *audio.Controller, narrating bool, spin string) string {
	switch {
	case narrating:
		return spin + " Generating voice..."
	case c == nil || !c.Loaded():
		return audio.Idle.String()
	}

	var icon string
	switch c.State() {
	case audio.Playing:
		icon = "▶"
	case audio.Finished:
		icon = "■"
	default:
		icon = "⏸"
	}

	filled := int(c.Progress() * progressWidth)
	filled = min(max(filled, 0), progressWidth)
	bar := strings.Repeat("━", filled) + strings.Repeat("─", progressWidth-filled)

	return fmt.Sprintf("%s %s %s / %s %.1fx", icon, bar,
		formatClock(c.Position()), formatClock(c.Duration()), c.Speed())
}

func formatClock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
