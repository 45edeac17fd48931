package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderVocabItem(w store.VocabularyWord, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(w.Word, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(w.Word, width-4))
	}

	meta := "  " + itemSourceStyle.Render(truncateStr(w.Translation, width/2)) + " " +
		itemTimeStyle.Render(truncateStr(w.PartOfSpeech, 8))
	if w.Definition == vocab.PendingDefinition {
		meta = "  " + itemTimeStyle.Render(w.Definition)
	}

	return title + "\n" + meta
}

// renderWordDetail expands the selected entry below the list.
func renderWordDetail(w store.VocabularyWord, width int) string {
	lines := []string{
		panelTitleStyle.Render(w.Word) + " " + itemTimeStyle.Render(w.PartOfSpeech),
		translationStyle.Width(width).Render(w.Definition),
	}
	if w.Example != "" {
		lines = append(lines, articleBodyStyle.Width(width).Render("“"+w.Example+"”"))
	}
	if len(w.Phrases) > 0 {
		lines = append(lines, itemTimeStyle.Width(width).Render("phrases: "+strings.Join(w.Phrases, ", ")))
	}
	if len(w.Forms) > 0 {
		lines = append(lines, itemTimeStyle.Width(width).Render("forms: "+strings.Join(w.Forms, ", ")))
	}
	if t := w.Added(); !t.IsZero() {
		lines = append(lines, itemTimeStyle.Render("added "+relativeTime(t)))
	}
	return strings.Join(lines, "\n")
}

func renderVocabPanel(words []store.VocabularyWord, cursor int, focused bool, width, height int) string {
	header := panelTitleStyle.Render(fmt.Sprintf("Word bank (%d)", len(words)))
	if len(words) == 0 {
		return header + "\n\n" + itemTimeStyle.Width(width).Render("Press a to look up a word. Saved words are highlighted while you read.")
	}

	var detail string
	if focused && cursor < len(words) {
		detail = renderWordDetail(words[cursor], width)
	}
	listHeight := height - 2
	if detail != "" {
		listHeight -= strings.Count(detail, "\n") + 2
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := max(1, listHeight/itemHeight)

	// Calculate scroll offset
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(words))

	var b strings.Builder
	b.WriteString(header + "\n\n")
	for i := start; i < end; i++ {
		b.WriteString(renderVocabItem(words[i], focused && i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	if detail != "" {
		b.WriteString("\n\n" + detail)
	}

	out, _ := scrollLines(b.String(), 0, height)
	return out
}
