// Package extract pulls the readable text out of a news page so headline
// articles can be grounded on the original report.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const (
	maxBodySize = 10 * 1024 * 1024
	// MaxChars bounds the excerpt handed to the model.
	MaxChars = 2000
)

type Extractor struct {
	client   *http.Client
	maxChars int
}

func New() *Extractor {
	return &Extractor{
		client:   &http.Client{Timeout: 15 * time.Second},
		maxChars: MaxChars,
	}
}

// Extract fetches rawURL and returns the start of its main text.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; lexis/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", u.Host, resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return "", fmt.Errorf("page is %d bytes, limit is %d", resp.ContentLength, maxBodySize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	if len(body) > maxBodySize {
		return "", fmt.Errorf("page exceeds %d bytes", maxBodySize)
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return "", fmt.Errorf("extracting article: %w", err)
	}
	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", u.Host)
	}
	return clip(text, e.maxChars), nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
