package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/matheuskafuri/lexis/internal/config"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/mmcdole/gofeed"
)

// Item is a feed entry reduced to what the picker needs.
type Item struct {
	store.Headline
	Published time.Time
}

type Fetcher interface {
	Fetch(ctx context.Context, feed config.Feed) ([]Item, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

func (f *RSSFetcher) Fetch(ctx context.Context, feed config.Feed) ([]Item, error) {
	parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", feed.Name, err)
	}

	now := time.Now()
	maxAge := now.Add(-48 * time.Hour)
	items := make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		// Headlines are for today's reading; skip stale news
		if pub.Before(maxAge) {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		items = append(items, Item{
			Headline: store.Headline{
				Title:   title,
				Source:  feed.Name,
				URL:     item.Link,
				Summary: truncate(stripHTML(desc), 300),
			},
			Published: pub,
		})
	}
	return items, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

type FetchResult struct {
	Items  []Item
	Errors []error
}

func FetchAll(ctx context.Context, fetcher Fetcher, feeds []config.Feed) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		wg     sync.WaitGroup
	)

	for _, f := range feeds {
		wg.Add(1)
		go func(f config.Feed) {
			defer wg.Done()
			items, err := fetcher.Fetch(ctx, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Items = append(result.Items, items...)
		}(f)
	}

	wg.Wait()
	return result
}

// Source serves headlines from RSS and Atom feeds.
type Source struct {
	feeds   []config.Feed
	count   int
	fetcher Fetcher
	log     *slog.Logger
}

func NewSource(feeds []config.Feed, count int, log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{feeds: feeds, count: count, fetcher: NewRSSFetcher(), log: log}
}

// Headlines returns the newest items across all feeds, one per URL. It fails
// only when every feed fails.
func (s *Source) Headlines(ctx context.Context) ([]store.Headline, error) {
	res := FetchAll(ctx, s.fetcher, s.feeds)
	for _, err := range res.Errors {
		s.log.Warn("feed fetch failed", "err", err)
	}
	if len(res.Items) == 0 && len(res.Errors) > 0 {
		return nil, fmt.Errorf("all %d feeds failed: %w", len(res.Errors), res.Errors[0])
	}
	return newest(res.Items, s.count), nil
}

func newest(items []Item, n int) []store.Headline {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	seen := make(map[string]bool, len(items))
	out := make([]store.Headline, 0, n)
	for _, it := range items {
		if seen[it.URL] {
			continue
		}
		seen[it.URL] = true
		out = append(out, it.Headline)
		if len(out) == n {
			break
		}
	}
	return out
}
