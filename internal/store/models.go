package store

import (
	"strings"
	"time"
)

// Article is a generated study document. It is never modified after generation.
type Article struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Topic       string `json:"topic"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	Translation string `json:"translation,omitempty"`
}

// Paragraphs returns the non-blank lines of the article body.
func (a Article) Paragraphs() []string {
	return splitParagraphs(a.Content)
}

// TranslationParagraphs returns the non-blank lines of the translation.
func (a Article) TranslationParagraphs() []string {
	return splitParagraphs(a.Translation)
}

// WordCount counts whitespace separated words in the body.
func (a Article) WordCount() int {
	return len(strings.Fields(a.Content))
}

// ReadingTime estimates minutes at 200 words per minute, minimum one.
func (a Article) ReadingTime() int {
	minutes := a.WordCount() / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func splitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

// Headline is a candidate news item shown in the picker. Not persisted.
type Headline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
	// Summary is the feed description as plain text, when the source has one.
	Summary string `json:"summary,omitempty"`
}

// VocabularyWord is one entry of the learner's bank. JSON keys follow the
// browser storage format so exported banks can be loaded back.
type VocabularyWord struct {
	ID           string   `json:"id"`
	Word         string   `json:"word"`
	PartOfSpeech string   `json:"partOfSpeech"`
	Translation  string   `json:"chinese"`
	Definition   string   `json:"english"`
	Example      string   `json:"example"`
	Phrases      []string `json:"phrases"`
	Forms        []string `json:"deformations"`
	AddedAt      string   `json:"addedAt"`
}

// Added parses AddedAt, returning the zero time when it is malformed.
func (w VocabularyWord) Added() time.Time {
	t, err := time.Parse(time.RFC3339Nano, w.AddedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StudySession records that an article was read on a given day.
type StudySession struct {
	Date      string `json:"date"`
	ArticleID string `json:"articleId"`
	Title     string `json:"title"`
}

// DateLayout is the calendar-day format used for Article.Date and StudySession.Date.
const DateLayout = "2006-01-02"

// Day formats t as a UTC calendar day.
func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
