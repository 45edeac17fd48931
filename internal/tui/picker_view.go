package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/lexis/internal/store"
)

var asciiLogo = []string{
	`██╗     ███████╗██╗  ██╗██╗███████╗`,
	`██║     ██╔════╝╚██╗██╔╝██║██╔════╝`,
	`██║     █████╗   ╚███╔╝ ██║███████╗`,
	`██║     ██╔══╝   ██╔██╗ ██║╚════██║`,
	`███████╗███████╗██╔╝ ██╗██║███████║`,
	`╚══════╝╚══════╝╚═╝  ╚═╝╚═╝╚══════╝`,
}

type pickerState struct {
	topics    []string
	headlines []store.Headline
	cursor    int
	loading   bool
	aiEnabled bool
	spinner   string
}

func renderPicker(p pickerState, width, height int) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)

	var lines []string
	if height >= 30 && width >= lipgloss.Width(asciiLogo[0]) {
		for _, l := range asciiLogo {
			lines = append(lines, logoStyle.Render(l))
		}
		lines = append(lines, "")
	}

	lines = append(lines, panelTitleStyle.Render("Pick a topic"), "")
	cursorRow := 0
	for i, t := range p.topics {
		if i == p.cursor {
			cursorRow = len(lines)
		}
		lines = append(lines, renderPickerItem(t, "", i == p.cursor, width))
	}

	lines = append(lines, "", panelTitleStyle.Render("Today's headlines"), "")
	switch {
	case !p.aiEnabled:
		lines = append(lines, itemTimeStyle.Render("  Set ai.api_key or LEXIS_AI_KEY to start."))
	case p.loading:
		lines = append(lines, "  "+p.spinner+" "+itemTimeStyle.Render("Fetching headlines..."))
	case len(p.headlines) == 0:
		lines = append(lines, itemTimeStyle.Render("  No headlines. Press r to retry."))
	}
	if !p.loading {
		for i, h := range p.headlines {
			selected := len(p.topics)+i == p.cursor
			if selected {
				cursorRow = len(lines)
			}
			lines = append(lines, renderPickerItem(h.Title, h.Source, selected, width))
			if selected && h.Summary != "" {
				lines = append(lines, itemTimeStyle.PaddingLeft(4).Width(width).Render(h.Summary))
			}
		}
	}

	// keep the cursor row on screen
	offset := 0
	if cursorRow >= height {
		offset = cursorRow - height + 1
	}
	content, _ := scrollLines(strings.Join(lines, "\n"), offset, height)
	return content
}

func renderPickerItem(title, source string, selected bool, width int) string {
	var line string
	if source != "" {
		title = truncateStr(title, width-len([]rune(source))-7)
	} else {
		title = truncateStr(title, width-4)
	}
	if selected {
		line = itemSelectedStyle.Render("> " + title)
	} else {
		line = itemTitleStyle.Render("  " + title)
	}
	if source != "" {
		line += " " + itemSourceStyle.Render("· "+source)
	}
	return line
}

func renderLoading(spin string, width, height int) string {
	msg := spin + " " + itemTimeStyle.Render("Writing your article...")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
}
