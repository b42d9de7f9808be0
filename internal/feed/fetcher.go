package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// URL returns the new-posts feed for a subreddit.
func URL(subreddit string) string {
	return fmt.Sprintf("https://www.reddit.com/r/%s/new/.rss", subreddit)
}

// Fetcher retrieves and parses one feed snapshot.
type Fetcher struct {
	userAgent string
	client    *http.Client
	parser    *gofeed.Parser
}

func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		userAgent: userAgent,
		client:    &http.Client{Timeout: 20 * time.Second},
		parser:    gofeed.NewParser(),
	}
}

// Fetch downloads and parses the feed, returning entries in feed order.
// HTTP and parse failures carry the first 200 characters of the response
// so upstream blocks (rate limiting, HTML error pages) are diagnosable.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response for %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed HTTP error for %s: %s; first 200 chars: %q", url, resp.Status, snippet(body))
	}

	parsed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("feed parse error for %s: %v; first 200 chars: %q", url, err, snippet(body))
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, entryFromItem(item))
	}
	return entries, nil
}

func entryFromItem(item *gofeed.Item) Entry {
	e := Entry{
		ID:          item.GUID,
		Title:       item.Title,
		Link:        item.Link,
		Published:   item.Published,
		Updated:     item.Updated,
		PublishedAt: item.PublishedParsed,
		UpdatedAt:   item.UpdatedParsed,
		Summary:     item.Description,
		MediaURL:    mediaURL(item),
	}
	if e.Summary == "" {
		e.Summary = item.Content
	}
	if item.Author != nil {
		e.Author = item.Author.Name
	}
	if e.Author == "" {
		for _, a := range item.Authors {
			if a != nil && a.Name != "" {
				e.Author = a.Name
				break
			}
		}
	}
	return e
}

// mediaURL pulls an attached media link: media:content extension first,
// then enclosures.
func mediaURL(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func snippet(body []byte) string {
	s := strings.ReplaceAll(string(body), "\n", " ")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
