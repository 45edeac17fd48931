package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/matheuskafuri/lexis/internal/config"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

// HeadlineSource supplies the candidate headlines shown in the picker.
type HeadlineSource interface {
	Headlines(ctx context.Context) ([]store.Headline, error)
}

// Generator produces study material.
type Generator interface {
	HeadlineSource
	ArticleForTopic(ctx context.Context, topic string) (store.Article, error)
	ArticleFromHeadline(ctx context.Context, h store.Headline) (store.Article, error)
	LookupWord(ctx context.Context, word string) (vocab.Details, error)
}

// PageReader fetches readable text for a headline URL.
type PageReader interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

type Option func(*generator)

// WithPageReader adds the headline page text to headline prompts.
func WithPageReader(r PageReader) Option {
	return func(g *generator) { g.pages = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *generator) { g.log = l }
}

// WithHeadlineCount sets how many headlines to request.
func WithHeadlineCount(n int) Option {
	return func(g *generator) {
		if n > 0 {
			g.count = n
		}
	}
}

// New creates a Generator from the given AI config.
func New(cfg *config.AIConfig, apiKey string, opts ...Option) (Generator, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	var llm completer
	switch cfg.Provider {
	case "gemini":
		model := cfg.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		llm = &geminiProvider{apiKey: apiKey, model: model}
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		llm = newOpenAIProvider(apiKey, model)
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		llm = newClaudeProvider(apiKey, model)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: gemini, openai, claude)", cfg.Provider)
	}
	return newGenerator(llm, opts...), nil
}

// completer runs one structured request against a model and returns the raw
// response text.
type completer interface {
	complete(ctx context.Context, req request) (string, error)
}

type request struct {
	system   string
	user     string
	contract contract
}

type generator struct {
	llm   completer
	pages PageReader
	log   *slog.Logger
	count int
	now   func() time.Time
}

func newGenerator(llm completer, opts ...Option) *generator {
	g := &generator{llm: llm, log: slog.Default(), count: 5, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *generator) ArticleForTopic(ctx context.Context, topic string) (store.Article, error) {
	text, err := g.llm.complete(ctx, request{
		system:   articleSystemPrompt,
		user:     fmt.Sprintf(topicPrompt, topic),
		contract: articleContract,
	})
	if err != nil {
		return store.Article{}, fmt.Errorf("generating article: %w", err)
	}
	fields, err := parseArticle(text)
	if err != nil {
		return store.Article{}, err
	}
	return g.article(topic, fields), nil
}

func (g *generator) ArticleFromHeadline(ctx context.Context, h store.Headline) (store.Article, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, headlinePrompt, h.Title, h.Source)
	if excerpt := g.excerpt(ctx, h.URL); excerpt != "" {
		fmt.Fprintf(&sb, excerptPrompt, excerpt)
	} else if h.Summary != "" {
		fmt.Fprintf(&sb, summaryPrompt, h.Summary)
	}

	text, err := g.llm.complete(ctx, request{
		system:   articleSystemPrompt,
		user:     sb.String(),
		contract: articleContract,
	})
	if err != nil {
		return store.Article{}, fmt.Errorf("generating article from headline: %w", err)
	}
	fields, err := parseArticle(text)
	if err != nil {
		return store.Article{}, err
	}
	return g.article(h.Source, fields), nil
}

func (g *generator) excerpt(ctx context.Context, rawURL string) string {
	if g.pages == nil || rawURL == "" {
		return ""
	}
	text, err := g.pages.Extract(ctx, rawURL)
	if err != nil {
		g.log.Warn("headline page unavailable", "url", rawURL, "err", err)
		return ""
	}
	return text
}

func (g *generator) Headlines(ctx context.Context) ([]store.Headline, error) {
	text, err := g.llm.complete(ctx, request{
		user:     fmt.Sprintf(headlinesPrompt, g.count),
		contract: headlineContract,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching headlines: %w", err)
	}
	headlines, err := parseHeadlines(text)
	if err != nil {
		g.log.Warn("failed to parse headlines", "err", err)
		return []store.Headline{}, nil
	}
	if len(headlines) > g.count {
		headlines = headlines[:g.count]
	}
	return headlines, nil
}

func (g *generator) LookupWord(ctx context.Context, word string) (vocab.Details, error) {
	text, err := g.llm.complete(ctx, request{
		user:     fmt.Sprintf(wordPrompt, word),
		contract: wordContract,
	})
	if err != nil {
		return vocab.Details{}, fmt.Errorf("looking up %q: %w", word, err)
	}
	d, err := parseWord(text)
	if err != nil {
		g.log.Warn("failed to parse word details", "word", word, "err", err)
		return unparsedWord, nil
	}
	return d, nil
}

func (g *generator) article(topic string, f articleFields) store.Article {
	now := g.now()
	return store.Article{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Date:        store.Day(now),
		Topic:       topic,
		Title:       f.Title,
		Content:     f.Content,
		Summary:     f.Summary,
		Translation: f.Translation,
	}
}
