package vocab

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/matheuskafuri/lexis/internal/store"
)

// Placeholder values shown while a lookup is in flight.
const (
	PendingPartOfSpeech = "..."
	PendingTranslation  = "..."
	PendingDefinition   = "Fetching definition..."
	FailedDefinition    = "Could not fetch definition."
)

var (
	ErrTooShort  = errors.New("word too short")
	ErrDuplicate = errors.New("word already in bank")
)

const stripChars = ".,!?;:()"

// Normalize trims whitespace and strips punctuation from both ends.
func Normalize(raw string) string {
	w := strings.TrimSpace(raw)
	w = strings.Trim(w, stripChars)
	return strings.TrimSpace(w)
}

// Details is the result of a word lookup.
type Details struct {
	PartOfSpeech string
	Translation  string
	Definition   string
	Example      string
	Phrases      []string
	Forms        []string
}

// Bank is the learner's vocabulary list. It has a single writer and does
// no I/O; callers persist Words() after each mutation.
type Bank struct {
	words []store.VocabularyWord
	now   func() time.Time
	newID func() string
}

// NewBank wraps an existing list, usually the one loaded at startup.
func NewBank(words []store.VocabularyWord) *Bank {
	return &Bank{
		words: append([]store.VocabularyWord(nil), words...),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Add inserts a placeholder record for raw and returns it together with the
// notice to show. The lookup that fills it in is the caller's job.
func (b *Bank) Add(raw string) (store.VocabularyWord, string, error) {
	w := Normalize(raw)
	if utf8.RuneCountInString(w) < 2 {
		return store.VocabularyWord{}, "Type at least two letters to look up a word.", ErrTooShort
	}
	if b.Contains(w) {
		return store.VocabularyWord{}, fmt.Sprintf("\"%s\" is already in your bank.", w), ErrDuplicate
	}

	entry := store.VocabularyWord{
		ID:           b.newID(),
		Word:         w,
		PartOfSpeech: PendingPartOfSpeech,
		Translation:  PendingTranslation,
		Definition:   PendingDefinition,
		Phrases:      []string{},
		Forms:        []string{},
		AddedAt:      b.now().UTC().Format(time.RFC3339Nano),
	}
	b.words = append(b.words, entry)
	return entry, fmt.Sprintf("Added \"%s\" to bank.", w), nil
}

// Apply merges lookup details into the record with the given id. The part of
// speech is always replaced so the pending marker never outlives a finished
// lookup; other empty fields leave the current value in place. It reports
// false when the record no longer exists.
func (b *Bank) Apply(id string, d Details) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	w := &b.words[i]
	w.PartOfSpeech = d.PartOfSpeech
	if d.Translation != "" {
		w.Translation = d.Translation
	}
	if d.Definition != "" {
		w.Definition = d.Definition
	}
	if d.Example != "" {
		w.Example = d.Example
	}
	if d.Phrases != nil {
		w.Phrases = append([]string(nil), d.Phrases...)
	}
	if d.Forms != nil {
		w.Forms = append([]string(nil), d.Forms...)
	}
	return true
}

// Fail marks a lookup as failed by replacing only the definition.
func (b *Bank) Fail(id string) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.words[i].Definition = FailedDefinition
	return true
}

// Remove drops the record with the given id, if any.
func (b *Bank) Remove(id string) bool {
	out := b.words[:0]
	removed := false
	for _, w := range b.words {
		if w.ID == id {
			removed = true
			continue
		}
		out = append(out, w)
	}
	b.words = out
	return removed
}

// Contains reports whether word is in the bank, ignoring case.
func (b *Bank) Contains(word string) bool {
	for _, w := range b.words {
		if strings.EqualFold(w.Word, word) {
			return true
		}
	}
	return false
}

// Get returns the record with the given id.
func (b *Bank) Get(id string) (store.VocabularyWord, bool) {
	i := b.index(id)
	if i < 0 {
		return store.VocabularyWord{}, false
	}
	return b.words[i], true
}

// Words returns a copy of the bank in insertion order.
func (b *Bank) Words() []store.VocabularyWord {
	return append([]store.VocabularyWord(nil), b.words...)
}

// Terms returns the bare words, used for highlighting.
func (b *Bank) Terms() []string {
	out := make([]string, len(b.words))
	for i, w := range b.words {
		out[i] = w.Word
	}
	return out
}

func (b *Bank) Len() int { return len(b.words) }

func (b *Bank) index(id string) int {
	for i, w := range b.words {
		if w.ID == id {
			return i
		}
	}
	return -1
}
