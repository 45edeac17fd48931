package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

func pendingWord(word string) store.VocabularyWord {
	return store.VocabularyWord{
		ID:           word,
		Word:         word,
		PartOfSpeech: vocab.PendingPartOfSpeech,
		Translation:  vocab.PendingTranslation,
		Definition:   vocab.PendingDefinition,
	}
}

func TestRenderVocabItem(t *testing.T) {
	tariff := store.VocabularyWord{Word: "tariff", PartOfSpeech: "n.", Translation: "关税", Definition: "a tax on imports"}
	failed := tariff
	failed.Definition = vocab.FailedDefinition

	tests := []struct {
		name     string
		w        store.VocabularyWord
		selected bool
		width    int
		want     []string
		absent   []string
	}{
		{"looked up", tariff, false, 30, []string{"  tariff", "关税", "n."}, []string{"> "}},
		{"selected", tariff, true, 30, []string{"> tariff"}, nil},
		{"pending lookup", pendingWord("embargo"), false, 30, []string{"embargo", vocab.PendingDefinition}, []string{"... ..."}},
		{"failed lookup keeps placeholder fields", func() store.VocabularyWord {
			w := pendingWord("quota")
			w.Definition = vocab.FailedDefinition
			return w
		}(), false, 30, []string{"quota", "... ..."}, []string{vocab.FailedDefinition}},
		{"failed after translation", failed, false, 30, []string{"关税 n."}, nil},
		{"long word truncated", store.VocabularyWord{Word: "protectionism", Translation: "保护主义"}, false, 14, []string{"  protect..."}, []string{"protectionism"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderVocabItem(tt.w, tt.selected, tt.width)
			if n := strings.Count(got, "\n"); n != 1 {
				t.Errorf("item should be two lines, got %d:\n%s", n+1, got)
			}
			for _, s := range tt.want {
				if !strings.Contains(got, s) {
					t.Errorf("missing %q in:\n%s", s, got)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(got, s) {
					t.Errorf("unexpected %q in:\n%s", s, got)
				}
			}
		})
	}
}

func TestRenderWordDetail(t *testing.T) {
	full := store.VocabularyWord{
		Word:         "tariff",
		PartOfSpeech: "n.",
		Definition:   "a tax on imports",
		Example:      "A new tariff on steel.",
		Phrases:      []string{"trade war", "tariff hike"},
		Forms:        []string{"tariffs"},
		AddedAt:      time.Now().Add(-2 * time.Hour).Format(time.RFC3339Nano),
	}
	got := renderWordDetail(full, 40)
	for _, want := range []string{"tariff n.", "a tax on imports", "“A new tariff on steel.”", "phrases: trade war, tariff hike", "forms: tariffs", "added 2h"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	bare := renderWordDetail(pendingWord("levy"), 40)
	for _, s := range []string{"phrases:", "forms:", "added", "“"} {
		if strings.Contains(bare, s) {
			t.Errorf("pending entry should not show %q:\n%s", s, bare)
		}
	}
	if !strings.Contains(bare, vocab.PendingDefinition) {
		t.Errorf("pending definition missing:\n%s", bare)
	}
}

func bankWords(words ...string) []store.VocabularyWord {
	out := make([]store.VocabularyWord, len(words))
	for i, w := range words {
		out[i] = store.VocabularyWord{
			ID:           w,
			Word:         w,
			PartOfSpeech: "n.",
			Translation:  fmt.Sprintf("释义%d", i),
			Definition:   fmt.Sprintf("meaning %c", 'A'+i),
		}
	}
	return out
}

func TestRenderVocabPanel(t *testing.T) {
	words := bankWords("tariff", "quota", "embargo", "subsidy", "levy", "surplus")

	tests := []struct {
		name    string
		words   []store.VocabularyWord
		cursor  int
		focused bool
		height  int
		want    []string
		absent  []string
	}{
		{
			name:   "empty bank",
			height: 14,
			want:   []string{"Word bank (0)", "Press a to look up a word."},
		},
		{
			name:   "unfocused shows from the top",
			words:  words,
			height: 14,
			want:   []string{"Word bank (6)", "tariff", "quota", "embargo"},
			absent: []string{"> ", "levy", "meaning"},
		},
		{
			name:    "focused cursor scrolls into view with detail",
			words:   words,
			cursor:  4,
			focused: true,
			height:  14,
			want:    []string{"embargo", "subsidy", "> levy", "meaning E"},
			absent:  []string{"tariff", "quota", "surplus", "meaning D"},
		},
		{
			name:    "tall panel needs no scroll",
			words:   words,
			cursor:  4,
			focused: true,
			height:  40,
			want:    []string{"tariff", "> levy", "surplus", "meaning E"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderVocabPanel(tt.words, tt.cursor, tt.focused, 30, tt.height)
			if n := strings.Count(got, "\n") + 1; len(tt.words) > 0 && n != tt.height {
				t.Errorf("panel has %d lines, want %d", n, tt.height)
			}
			for _, s := range tt.want {
				if !strings.Contains(got, s) {
					t.Errorf("missing %q in:\n%s", s, got)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(got, s) {
					t.Errorf("unexpected %q in:\n%s", s, got)
				}
			}
		})
	}
}
