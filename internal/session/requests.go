package session

import (
	"context"

	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

// The calls below only talk to the AI providers. They leave session state
// alone, so they may run off the event loop; feed their results back through
// FinishArticle, SetHeadlines, ApplyLookup or FailLookup.

func (s *Session) GenerateForTopic(ctx context.Context, topic string) (store.Article, error) {
	if s.gen == nil {
		return store.Article{}, ErrNoGenerator
	}
	return s.gen.ArticleForTopic(ctx, topic)
}

func (s *Session) GenerateFromHeadline(ctx context.Context, h store.Headline) (store.Article, error) {
	if s.gen == nil {
		return store.Article{}, ErrNoGenerator
	}
	return s.gen.ArticleFromHeadline(ctx, h)
}

func (s *Session) FetchHeadlines(ctx context.Context) ([]store.Headline, error) {
	if s.headlines == nil {
		return nil, ErrNoGenerator
	}
	return s.headlines.Headlines(ctx)
}

func (s *Session) Lookup(ctx context.Context, word string) (vocab.Details, error) {
	if s.gen == nil {
		return vocab.Details{}, ErrNoGenerator
	}
	return s.gen.LookupWord(ctx, word)
}

// Narrate synthesises speech for the article title followed by its body.
func (s *Session) Narrate(ctx context.Context, a store.Article) (string, error) {
	if s.narrator == nil {
		return "", ErrNarrationDisabled
	}
	return s.narrator.Narrate(ctx, narrationText(a))
}

func narrationText(a store.Article) string {
	if a.Title == "" {
		return a.Content
	}
	return a.Title + ". " + a.Content
}

// Blocking helpers for surfaces without an event loop.

// SelectTopic generates and opens an article for topic.
func (s *Session) SelectTopic(ctx context.Context, topic string) (store.Article, string, error) {
	if err := s.BeginArticle(); err != nil {
		return store.Article{}, err.Error(), err
	}
	a, err := s.GenerateForTopic(ctx, topic)
	if notice := s.FinishArticle(ctx, TopicArticle, a, err); err != nil {
		return store.Article{}, notice, err
	}
	return a, "", nil
}

// SelectHeadline generates and opens an article from a headline.
func (s *Session) SelectHeadline(ctx context.Context, h store.Headline) (store.Article, string, error) {
	if err := s.BeginArticle(); err != nil {
		return store.Article{}, err.Error(), err
	}
	a, err := s.GenerateFromHeadline(ctx, h)
	if notice := s.FinishArticle(ctx, HeadlineArticle, a, err); err != nil {
		return store.Article{}, notice, err
	}
	return a, "", nil
}

// LoadHeadlines refreshes the headline list.
func (s *Session) LoadHeadlines(ctx context.Context) []store.Headline {
	hs, err := s.FetchHeadlines(ctx)
	s.SetHeadlines(hs, err)
	return s.Headlines()
}

// LookupAndAdd runs both phases of a word capture and returns the final entry.
func (s *Session) LookupAndAdd(ctx context.Context, raw string) (store.VocabularyWord, string, error) {
	w, notice, err := s.AddWord(ctx, raw)
	if err != nil {
		return w, notice, err
	}
	d, err := s.Lookup(ctx, w.Word)
	if err != nil {
		s.FailLookup(ctx, w.ID, err)
	} else {
		s.ApplyLookup(ctx, w.ID, d)
	}
	final, _ := s.Word(w.ID)
	return final, notice, nil
}

// NarrateCurrent synthesises speech for the open article.
func (s *Session) NarrateCurrent(ctx context.Context) (string, error) {
	a, ok := s.Article()
	if !ok {
		return "", ErrNoArticle
	}
	return s.Narrate(ctx, a)
}
