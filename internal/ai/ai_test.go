package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	antoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	"github.com/matheuskafuri/lexis/internal/config"
	"github.com/matheuskafuri/lexis/internal/store"
	oaoption "github.com/openai/openai-go/option"
)

type fakeCompleter struct {
	reply string
	err   error
	reqs  []request
}

func (f *fakeCompleter) complete(_ context.Context, req request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

type fakePages struct {
	text string
	err  error
}

func (f fakePages) Extract(context.Context, string) (string, error) { return f.text, f.err }

var fixedNow = time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("X", -3*3600))

func testGenerator(llm completer, opts ...Option) *generator {
	g := newGenerator(llm, opts...)
	g.now = func() time.Time { return fixedNow }
	return g
}

const articleJSON = `{"title":"Chips and Power","content":"Para one.\n\nPara two.","summary":"Two sentences. Here.","translation":"芯片与权力"}`

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain JSON unchanged", `{"title":"test"}`, `{"title":"test"}`},
		{"strips json fenced block", "```json\n{\"title\":\"test\"}\n```", `{"title":"test"}`},
		{"strips plain fenced block", "```\n{\"title\":\"test\"}\n```", `{"title":"test"}`},
		{"trims surrounding whitespace", "  {\"title\":\"test\"}  ", `{"title":"test"}`},
		{"drops surrounding prose", "Here you go: {\"title\":\"test\"} Enjoy!", `{"title":"test"}`},
		{"keeps arrays", "Sure!\n[{\"title\":\"a\"}]\nDone.", `[{"title":"a"}]`},
		{"no json", "sorry", "sorry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanJSONResponse(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseArticle(t *testing.T) {
	f, err := parseArticle("```json\n" + articleJSON + "\n```")
	if err != nil {
		t.Fatalf("parseArticle: %v", err)
	}
	if f.Title != "Chips and Power" || f.Translation != "芯片与权力" {
		t.Errorf("unexpected fields: %+v", f)
	}

	if _, err := parseArticle(`{"title":"Only a title"}`); err == nil {
		t.Error("expected error for missing fields")
	} else if !strings.Contains(err.Error(), "content, summary, translation") {
		t.Errorf("error should name missing fields, got %v", err)
	}
	if _, err := parseArticle("not json at all"); err == nil {
		t.Error("expected error for malformed response")
	}
}

func TestArticleForTopic(t *testing.T) {
	llm := &fakeCompleter{reply: articleJSON}
	g := testGenerator(llm)

	a, err := g.ArticleForTopic(context.Background(), "Global Economy")
	if err != nil {
		t.Fatalf("ArticleForTopic: %v", err)
	}
	if a.ID != "1792463400000" {
		t.Errorf("ID should be generation time in ms, got %s", a.ID)
	}
	if a.Date != "2026-10-20" {
		t.Errorf("Date should be the UTC day, got %s", a.Date)
	}
	if a.Topic != "Global Economy" || a.Title != "Chips and Power" {
		t.Errorf("unexpected article: %+v", a)
	}
	req := llm.reqs[0]
	if !strings.Contains(req.user, "Global Economy") || req.system != articleSystemPrompt {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestArticleForTopicErrors(t *testing.T) {
	g := testGenerator(&fakeCompleter{err: errors.New("quota")})
	if _, err := g.ArticleForTopic(context.Background(), "x"); err == nil {
		t.Error("expected provider error")
	}
	g = testGenerator(&fakeCompleter{reply: `{"title":"t"}`})
	if _, err := g.ArticleForTopic(context.Background(), "x"); err == nil {
		t.Error("expected contract error")
	}
}

func TestArticleFromHeadline(t *testing.T) {
	h := store.Headline{Title: "Markets rally", Source: "BBC", URL: "https://bbc.example/1"}

	llm := &fakeCompleter{reply: articleJSON}
	g := testGenerator(llm, WithPageReader(fakePages{text: "Stocks rose sharply on Monday."}))
	a, err := g.ArticleFromHeadline(context.Background(), h)
	if err != nil {
		t.Fatalf("ArticleFromHeadline: %v", err)
	}
	if a.Topic != "BBC" {
		t.Errorf("topic should be the headline source, got %q", a.Topic)
	}
	user := llm.reqs[0].user
	for _, want := range []string{`"Markets rally"`, "from BBC", "Stocks rose sharply"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q:\n%s", want, user)
		}
	}

	// A failing page reader falls back to the title alone.
	llm = &fakeCompleter{reply: articleJSON}
	g = testGenerator(llm, WithPageReader(fakePages{err: errors.New("404")}))
	if _, err := g.ArticleFromHeadline(context.Background(), h); err != nil {
		t.Fatalf("ArticleFromHeadline: %v", err)
	}
	if strings.Contains(llm.reqs[0].user, "Excerpt") {
		t.Error("prompt should not include an excerpt when extraction fails")
	}
}

func TestArticleFromHeadlineFeedSummary(t *testing.T) {
	h := store.Headline{Title: "Markets rally", Source: "BBC", URL: "https://bbc.example/1", Summary: "Shares climbed after the rate decision."}

	tests := []struct {
		name        string
		pages       PageReader
		wantSummary bool
	}{
		{"extract fails", fakePages{err: errors.New("404")}, true},
		{"no page reader", nil, true},
		{"extract wins", fakePages{text: "Stocks rose sharply on Monday."}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeCompleter{reply: articleJSON}
			var opts []Option
			if tt.pages != nil {
				opts = append(opts, WithPageReader(tt.pages))
			}
			g := testGenerator(llm, opts...)
			if _, err := g.ArticleFromHeadline(context.Background(), h); err != nil {
				t.Fatalf("ArticleFromHeadline: %v", err)
			}
			got := strings.Contains(llm.reqs[0].user, "Shares climbed after the rate decision.")
			if got != tt.wantSummary {
				t.Errorf("summary in prompt = %v, want %v:\n%s", got, tt.wantSummary, llm.reqs[0].user)
			}
		})
	}
}

func TestHeadlines(t *testing.T) {
	reply := `[
		{"title":"One","source":"BBC","url":"https://a"},
		{"title":"  ","source":"CNN","url":"https://b"},
		{"title":"Two","source":"CNN","url":"https://c"},
		{"title":"Three","source":"CNN","url":"https://d"}
	]`
	llm := &fakeCompleter{reply: reply}
	g := testGenerator(llm, WithHeadlineCount(2))

	got, err := g.Headlines(context.Background())
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if len(got) != 2 || got[0].Title != "One" || got[1].Title != "Two" {
		t.Errorf("unexpected headlines: %+v", got)
	}
	if !strings.Contains(llm.reqs[0].user, "top 2") {
		t.Errorf("prompt should ask for 2 headlines: %s", llm.reqs[0].user)
	}
}

func TestHeadlinesParseFailureIsEmpty(t *testing.T) {
	g := testGenerator(&fakeCompleter{reply: "I cannot browse the web."})
	got, err := g.Headlines(context.Background())
	if err != nil {
		t.Fatalf("parse failure should not be an error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty list, got %#v", got)
	}

	g = testGenerator(&fakeCompleter{err: errors.New("offline")})
	if _, err := g.Headlines(context.Background()); err == nil {
		t.Error("provider errors are still errors")
	}
}

func TestLookupWord(t *testing.T) {
	reply := `{"partOfSpeech":"adj.","chinese":"短暂的","english":"lasting a short time","example":"Fame is ephemeral.","phrases":["ephemeral art"],"deformations":["ephemerally"]}`
	g := testGenerator(&fakeCompleter{reply: reply})

	d, err := g.LookupWord(context.Background(), "ephemeral")
	if err != nil {
		t.Fatalf("LookupWord: %v", err)
	}
	if d.PartOfSpeech != "adj." || d.Translation != "短暂的" || d.Definition != "lasting a short time" {
		t.Errorf("unexpected details: %+v", d)
	}
	if len(d.Phrases) != 1 || len(d.Forms) != 1 || d.Forms[0] != "ephemerally" {
		t.Errorf("unexpected lists: %+v", d)
	}
}

func TestLookupWordParseFailureIsPlaceholder(t *testing.T) {
	g := testGenerator(&fakeCompleter{reply: "{broken"})
	d, err := g.LookupWord(context.Background(), "ephemeral")
	if err != nil {
		t.Fatalf("parse failure should not be an error: %v", err)
	}
	if d.Translation != "解析失败" || d.Definition != "Definition could not be parsed." {
		t.Errorf("unexpected placeholder: %+v", d)
	}
	if d.PartOfSpeech != "" || d.Phrases == nil || len(d.Phrases) != 0 {
		t.Errorf("placeholder should have empty part of speech and lists: %+v", d)
	}
}

func TestContractDescribe(t *testing.T) {
	desc := wordContract.describe()
	for _, want := range []string{`"partOfSpeech"`, `"phrases": [`, "JSON only"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q:\n%s", want, desc)
		}
	}
	if list := headlineContract.describe(); !strings.Contains(list, "[\n  {") {
		t.Errorf("list contract should describe an array:\n%s", list)
	}
}

func TestContractSchema(t *testing.T) {
	s := headlineContract.schema()
	if s.Type != genai.TypeArray || s.Items == nil {
		t.Fatalf("expected array schema, got %+v", s)
	}
	if len(s.Items.Required) != 3 || s.Items.Properties["url"].Type != genai.TypeString {
		t.Errorf("unexpected item schema: %+v", s.Items)
	}

	w := wordContract.schema()
	if w.Type != genai.TypeObject || w.Properties["phrases"].Type != genai.TypeArray {
		t.Errorf("unexpected word schema: %+v", w)
	}
	if len(w.Required) != 6 {
		t.Errorf("all word fields should be required, got %v", w.Required)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(&config.AIConfig{Provider: "gemini"}, ""); err == nil {
		t.Error("expected error without a key")
	}
	if _, err := New(nil, "key"); err == nil {
		t.Error("expected error without config")
	}
	if _, err := New(&config.AIConfig{Provider: "llama"}, "key"); err == nil {
		t.Error("expected error for unknown provider")
	}
	for _, p := range []string{"gemini", "openai", "claude"} {
		if _, err := New(&config.AIConfig{Provider: p}, "key"); err != nil {
			t.Errorf("%s: %v", p, err)
		}
	}
}

func TestNarrationText(t *testing.T) {
	long := strings.Repeat("é", maxNarrationChars+50)
	got := narrationText(long)
	if !strings.HasPrefix(got, narrationPrompt) {
		t.Error("narration text should start with the reading instruction")
	}
	if n := utf8.RuneCountInString(strings.TrimPrefix(got, narrationPrompt)); n != maxNarrationChars {
		t.Errorf("expected %d characters, got %d", maxNarrationChars, n)
	}
}

func TestNewNarrator(t *testing.T) {
	n, err := NewNarrator(&config.NarrationConfig{Provider: "none"}, "key")
	if err != nil || n != nil {
		t.Errorf("provider none should disable narration, got %v, %v", n, err)
	}
	if _, err := NewNarrator(&config.NarrationConfig{Provider: "openai"}, ""); err == nil {
		t.Error("expected error without a key")
	}
	if _, err := NewNarrator(&config.NarrationConfig{Provider: "gemini"}, "key"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestOpenAIProvider(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "```json\n" + articleJSON + "\n```"},
			}},
		})
	}))
	defer srv.Close()

	llm := newOpenAIProvider("test-key", "gpt-4o-mini", oaoption.WithBaseURL(srv.URL+"/"))
	a, err := testGenerator(llm).ArticleForTopic(context.Background(), "Space Exploration")
	if err != nil {
		t.Fatalf("ArticleForTopic: %v", err)
	}
	if a.Title != "Chips and Power" {
		t.Errorf("unexpected title %q", a.Title)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
	system, _ := msgs[0].(map[string]any)["content"].(string)
	if !strings.Contains(system, `"translation"`) {
		t.Errorf("system prompt should embed the contract: %s", system)
	}
}

func TestClaudeProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_1",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-haiku-4-5-20251001",
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"content":       []map[string]any{{"type": "text", "text": `Here it is: {"partOfSpeech":"n.","chinese":"词","english":"word","example":"A word.","phrases":[],"deformations":["words"]}`}},
			"usage":         map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}))
	defer srv.Close()

	llm := newClaudeProvider("test-key", "claude-haiku-4-5-20251001", antoption.WithBaseURL(srv.URL+"/"))
	d, err := testGenerator(llm).LookupWord(context.Background(), "word")
	if err != nil {
		t.Fatalf("LookupWord: %v", err)
	}
	if d.Translation != "词" || len(d.Forms) != 1 {
		t.Errorf("unexpected details: %+v", d)
	}
}

func TestOpenAINarrator(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	var input, format string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Input          string `json:"input"`
			ResponseFormat string `json:"response_format"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		input, format = body.Input, body.ResponseFormat
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pcm)
	}))
	defer srv.Close()

	n := newOpenAINarrator("test-key", "", "", oaoption.WithBaseURL(srv.URL+"/"))
	got, err := n.Narrate(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(got)
	if string(raw) != string(pcm) {
		t.Errorf("unexpected audio %v", raw)
	}
	if format != "pcm" || !strings.HasSuffix(input, "Hello world.") {
		t.Errorf("unexpected request: format %q input %q", format, input)
	}
}

func TestOpenAINarratorEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/octet-stream")
	}))
	defer srv.Close()

	n := newOpenAINarrator("test-key", "tts-1", "alloy", oaoption.WithBaseURL(srv.URL+"/"))
	if _, err := n.Narrate(context.Background(), "Hello."); err == nil {
		t.Error("expected error for empty audio")
	}
}
