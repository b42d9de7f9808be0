// Package feed fetches a subreddit's syndication feed and decides which
// entries are worth delivering: deduplication against a persisted seen
// set, a recency window, and include/exclude keyword rules.
package feed

import "time"

// Entry is one feed item in canonical form.
type Entry struct {
	ID          string // feed-provided identifier; Key falls back to Link
	Title       string
	Link        string
	Author      string
	Published   string // raw date string, input to the fallback parse
	Updated     string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Summary     string // may contain markup
	MediaURL    string
}

// Key resolves the deduplication key. Entries with neither an id nor a
// link return "" and cannot be deduplicated.
func (e Entry) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Link
}
