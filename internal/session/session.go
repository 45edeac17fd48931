// Package session owns the state of one study session: the screen phase,
// the article being read, the vocabulary bank and the study journal. It is
// not safe for concurrent use; callers serialise access.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matheuskafuri/lexis/internal/ai"
	"github.com/matheuskafuri/lexis/internal/history"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

type Phase int

const (
	PickingTopic Phase = iota
	LoadingArticle
	Reading
)

func (p Phase) String() string {
	switch p {
	case LoadingArticle:
		return "loading"
	case Reading:
		return "reading"
	default:
		return "picking"
	}
}

// Kind says where an article request came from.
type Kind int

const (
	TopicArticle Kind = iota
	HeadlineArticle
)

// Notices shown when article generation fails.
const (
	NoticeGenerationFailed = "Generation failed. Please try again."
	NoticeHeadlineFailed   = "Headline conversion failed."
)

var (
	ErrNoGenerator       = errors.New("AI is not configured (set ai.api_key or LEXIS_AI_KEY)")
	ErrNarrationDisabled = errors.New("narration is not configured (set narration.api_key or LEXIS_TTS_KEY)")
	ErrNoArticle         = errors.New("no article is open")
	ErrBusy              = errors.New("an article is already loading")
)

type Options struct {
	Generator ai.Generator
	// Headlines defaults to Generator.
	Headlines ai.HeadlineSource
	Narrator  ai.Narrator
	Topics    []string
	Logger    *slog.Logger
}

type Session struct {
	store     store.Store
	gen       ai.Generator
	headlines ai.HeadlineSource
	narrator  ai.Narrator
	log       *slog.Logger
	now       func() time.Time

	topics      []string
	phase       Phase
	article     *store.Article
	headlineSet []store.Headline
	bank        *vocab.Bank
	journal     *history.Journal
}

// Open reads the history and vocabulary lists from st.
func Open(ctx context.Context, st store.Store, opts Options) (*Session, error) {
	sessions, err := st.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	words, err := st.LoadVocabulary(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}

	s := &Session{
		store:     st,
		gen:       opts.Generator,
		headlines: opts.Headlines,
		narrator:  opts.Narrator,
		log:       opts.Logger,
		now:       time.Now,
		topics:    opts.Topics,
		bank:      vocab.NewBank(words),
		journal:   history.New(sessions),
	}
	if s.headlines == nil && s.gen != nil {
		s.headlines = s.gen
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s, nil
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Topics() []string { return append([]string(nil), s.topics...) }

// Article returns the article being read.
func (s *Session) Article() (store.Article, bool) {
	if s.article == nil {
		return store.Article{}, false
	}
	return *s.article, true
}

func (s *Session) Headlines() []store.Headline {
	return append([]store.Headline(nil), s.headlineSet...)
}

func (s *Session) AIEnabled() bool        { return s.gen != nil }
func (s *Session) NarrationEnabled() bool { return s.narrator != nil }

// BeginArticle moves to the loading phase. It fails while another article is
// loading.
func (s *Session) BeginArticle() error {
	if s.phase == LoadingArticle {
		return ErrBusy
	}
	s.phase = LoadingArticle
	return nil
}

// FinishArticle completes a request started with BeginArticle. On failure it
// returns to the picker and yields the notice to show; on success it opens
// the article and records today's study session.
func (s *Session) FinishArticle(ctx context.Context, kind Kind, article store.Article, err error) string {
	if err != nil {
		s.log.Error("article generation failed", "kind", kind, "err", err)
		s.phase = PickingTopic
		if kind == HeadlineArticle {
			return NoticeHeadlineFailed
		}
		return NoticeGenerationFailed
	}

	s.article = &article
	s.phase = Reading
	if s.journal.Record(store.Day(s.now()), article) {
		s.saveHistory(ctx)
	}
	return ""
}

// Back returns to the picker and closes the article.
func (s *Session) Back() {
	s.article = nil
	s.phase = PickingTopic
}

// SetHeadlines installs the result of a headline fetch. Errors are logged
// and leave the list empty.
func (s *Session) SetHeadlines(headlines []store.Headline, err error) {
	if err != nil {
		s.log.Warn("headline fetch failed", "err", err)
		s.headlineSet = nil
		return
	}
	s.headlineSet = append([]store.Headline(nil), headlines...)
}

// AddWord inserts a placeholder entry for raw. The returned notice is meant
// for the user in every case, including errors.
func (s *Session) AddWord(ctx context.Context, raw string) (store.VocabularyWord, string, error) {
	w, notice, err := s.bank.Add(raw)
	if err != nil {
		return w, notice, err
	}
	s.saveVocabulary(ctx)
	return w, notice, nil
}

// ApplyLookup fills in the entry with the lookup result. It reports false
// when the entry was removed in the meantime.
func (s *Session) ApplyLookup(ctx context.Context, id string, d vocab.Details) bool {
	if !s.bank.Apply(id, d) {
		return false
	}
	s.saveVocabulary(ctx)
	return true
}

// FailLookup marks the entry's definition as unavailable.
func (s *Session) FailLookup(ctx context.Context, id string, err error) bool {
	s.log.Warn("word lookup failed", "id", id, "err", err)
	if !s.bank.Fail(id) {
		return false
	}
	s.saveVocabulary(ctx)
	return true
}

func (s *Session) RemoveWord(ctx context.Context, id string) bool {
	if !s.bank.Remove(id) {
		return false
	}
	s.saveVocabulary(ctx)
	return true
}

func (s *Session) Vocabulary() []store.VocabularyWord { return s.bank.Words() }

func (s *Session) Word(id string) (store.VocabularyWord, bool) { return s.bank.Get(id) }

// KnownTerms are the bank words, used to highlight the reader.
func (s *Session) KnownTerms() []string { return s.bank.Terms() }

func (s *Session) History() []store.StudySession { return s.journal.Sessions() }

func (s *Session) RecentArticles(n int) []store.StudySession { return s.journal.Recent(n) }

func (s *Session) Calendar(days int) []history.Day { return s.journal.Calendar(s.now(), days) }

func (s *Session) Streak() int { return s.journal.Streak(s.now()) }

// PruneHistory drops sessions older than retention.
func (s *Session) PruneHistory(ctx context.Context, retention time.Duration) int {
	n := s.journal.Prune(s.now().Add(-retention))
	if n > 0 {
		s.saveHistory(ctx)
	}
	return n
}

func (s *Session) saveHistory(ctx context.Context) {
	if err := s.store.SaveHistory(ctx, s.journal.Sessions()); err != nil {
		s.log.Error("saving history", "err", err)
	}
}

func (s *Session) saveVocabulary(ctx context.Context) {
	if err := s.store.SaveVocabulary(ctx, s.bank.Words()); err != nil {
		s.log.Error("saving vocabulary", "err", err)
	}
}
