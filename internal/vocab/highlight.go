package vocab

import (
	"regexp"
	"sort"
	"strings"
)

// Span is a run of text that either matches a known term or not.
type Span struct {
	Text  string
	Known bool
}

// Highlight splits text into spans, marking whole-word, case-insensitive
// matches of terms. Longer terms win over their prefixes.
func Highlight(text string, terms []string) []Span {
	if text == "" {
		return nil
	}
	re := termPattern(terms)
	if re == nil {
		return []Span{{Text: text}}
	}

	var spans []Span
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Text: text[last:loc[0]]})
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], Known: true})
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}

func termPattern(terms []string) *regexp.Regexp {
	var quoted []string
	sorted := append([]string(nil), terms...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, t := range sorted {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}
