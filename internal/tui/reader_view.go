package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

func renderReader(article store.Article, known []string, showTranslation bool, width int) string {
	if width < 10 {
		width = 10
	}

	title := articleTitleStyle.Width(width).Render(article.Title)
	meta := articleMetaStyle.Render(fmt.Sprintf("%s · %s · %d min read",
		article.Topic, article.Date, article.ReadingTime()))

	blocks := []string{title, meta, ""}
	if article.Summary != "" {
		blocks = append(blocks, translationStyle.Width(width).Render(article.Summary), "")
	}

	paras := article.Paragraphs()
	trans := article.TranslationParagraphs()
	for i, p := range paras {
		blocks = append(blocks, lipgloss.NewStyle().Width(width).Render(highlight(p, known)))
		if showTranslation && i < len(trans) {
			blocks = append(blocks, translationStyle.Width(width).Render(trans[i]))
		}
		blocks = append(blocks, "")
	}
	if showTranslation {
		for i := len(paras); i < len(trans); i++ {
			blocks = append(blocks, translationStyle.Width(width).Render(trans[i]), "")
		}
		if len(trans) == 0 {
			blocks = append(blocks, itemTimeStyle.Render("No translation for this article."))
		}
	}

	return strings.Join(blocks, "\n")
}

// highlight marks words already in the vocabulary bank.
func highlight(text string, known []string) string {
	var b strings.Builder
	for _, span := range vocab.Highlight(text, known) {
		if span.Known {
			b.WriteString(knownWordStyle.Render(span.Text))
		} else {
			b.WriteString(articleBodyStyle.Render(span.Text))
		}
	}
	return b.String()
}

// scrollLines returns height lines of content starting at offset, clamping
// offset so the last page stays full. The clamped offset is returned too.
func scrollLines(content string, offset, height int) (string, int) {
	lines := strings.Split(content, "\n")
	maxOffset := max(0, len(lines)-height)
	offset = min(max(0, offset), maxOffset)

	lines = lines[offset:]
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), offset
}
