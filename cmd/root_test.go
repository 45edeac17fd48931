package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/lexis/internal/config"
	"github.com/matheuskafuri/lexis/internal/store"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"90d", 90 * 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{90 * 24 * time.Hour, "90d"},
		{36 * time.Hour, "1d"},
		{5 * time.Hour, "5h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinWrap(t *testing.T) {
	got := joinWrap([]string{"a", "b", "c", "d", "e"}, 2)
	if got != "a b\nc d\ne" {
		t.Errorf("joinWrap = %q", got)
	}
	if joinWrap(nil, 7) != "" {
		t.Error("joinWrap(nil) should be empty")
	}
}

func TestFindWord(t *testing.T) {
	words := []store.VocabularyWord{
		{ID: "a1", Word: "tariff"},
		{ID: "b2", Word: "Quota"},
	}
	tests := []struct {
		key    string
		wantID string
		ok     bool
	}{
		{"b2", "b2", true},
		{"TARIFF", "a1", true},
		{"quota", "b2", true},
		{"levy", "", false},
	}
	for _, tt := range tests {
		w, ok := findWord(words, tt.key)
		if ok != tt.ok || w.ID != tt.wantID {
			t.Errorf("findWord(%q) = %q, %v; want %q, %v", tt.key, w.ID, ok, tt.wantID, tt.ok)
		}
	}
}

func TestPrintArticle(t *testing.T) {
	a := store.Article{
		Date:        "2026-10-19",
		Topic:       "Global Economy",
		Title:       "Chips and Power",
		Content:     "First.\n\nSecond.",
		Summary:     "Short.",
		Translation: "第一。\n第二。",
	}

	var buf bytes.Buffer
	printArticle(&buf, a, false)
	out := buf.String()
	if !strings.HasPrefix(out, "Chips and Power\nGlobal Economy · 2026-10-19 · 1 min read\n") {
		t.Errorf("header = %q", out)
	}
	if !strings.Contains(out, "First.\n\nSecond.") {
		t.Errorf("body missing: %q", out)
	}
	if strings.Contains(out, "第一") {
		t.Error("translation printed without --translation")
	}

	buf.Reset()
	printArticle(&buf, a, true)
	if !strings.Contains(buf.String(), "第一。\n\n第二。") {
		t.Errorf("translation missing: %q", buf.String())
	}
}

func TestHeadlineOrigin(t *testing.T) {
	feeds := []config.Feed{
		{Name: "BBC", Enabled: true},
		{Name: "Reuters", Enabled: false},
		{Name: "CNN", Enabled: true},
	}
	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{"enabled feeds", &config.Config{Headlines: config.HeadlinesConfig{Source: "feed", Feeds: feeds}}, "feeds: BBC, CNN"},
		{"no feeds", &config.Config{Headlines: config.HeadlinesConfig{Source: "feed"}}, "feeds (none enabled)"},
		{"ai provider", &config.Config{AI: &config.AIConfig{Provider: "claude"}}, "AI (claude)"},
		{"ai unset", &config.Config{}, "AI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headlineOrigin(tt.cfg); got != tt.want {
				t.Errorf("headlineOrigin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintHeadlines(t *testing.T) {
	var buf bytes.Buffer
	printHeadlines(&buf, "feeds: BBC", []store.Headline{
		{Title: "Markets rally", Source: "BBC", URL: "https://bbc.example/1", Summary: "Shares climbed."},
		{Title: "Storm nears coast", Source: "BBC"},
	})
	want := "Headlines from feeds: BBC\n\n" +
		" 1. Markets rally (BBC)\n    Shares climbed.\n    https://bbc.example/1\n" +
		" 2. Storm nears coast (BBC)\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}

	buf.Reset()
	printHeadlines(&buf, "AI", nil)
	if !strings.Contains(buf.String(), "No headlines available.") {
		t.Errorf("empty list output = %q", buf.String())
	}
}
