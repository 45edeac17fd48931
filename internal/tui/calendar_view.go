package tui

import (
	"fmt"
	"strings"

	"github.com/matheuskafuri/lexis/internal/history"
	"github.com/matheuskafuri/lexis/internal/store"
)

func renderCalendar(days []history.Day) string {
	var b strings.Builder
	for i, d := range days {
		cell := fmt.Sprintf("%2d", d.Day)
		switch {
		case d.Studied:
			cell = calendarStudiedStyle.Render(cell)
		case d.Today:
			cell = calendarTodayStyle.Render(cell)
		default:
			cell = calendarDayStyle.Render(cell)
		}
		b.WriteString(cell)
		if (i+1)%7 == 0 && i < len(days)-1 {
			b.WriteString("\n")
		} else if i < len(days)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func renderHistoryPanel(days []history.Day, streak int, recent []store.StudySession, width, height int) string {
	lines := []string{
		panelTitleStyle.Render(fmt.Sprintf("Last %d days", len(days))),
		"",
		renderCalendar(days),
		"",
	}
	if streak >= 1 {
		lines = append(lines, itemSelectedStyle.Render(fmt.Sprintf("streak %dd", streak)))
	} else {
		lines = append(lines, itemTimeStyle.Render("No streak yet"))
	}

	lines = append(lines, "", panelTitleStyle.Render("Recent articles"), "")
	if len(recent) == 0 {
		lines = append(lines, itemTimeStyle.Render("Nothing read yet"))
	}
	for _, s := range recent {
		lines = append(lines,
			itemTitleStyle.Render(truncateStr(s.Title, width)),
			itemTimeStyle.Render(s.Date),
		)
	}

	out, _ := scrollLines(strings.Join(lines, "\n"), 0, height)
	return out
}
