package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jarmeli1/reddit-rss-alerts/internal/email"
	"github.com/jarmeli1/reddit-rss-alerts/internal/feed"
	"github.com/jarmeli1/reddit-rss-alerts/internal/state"
)

// AlertSummary reports what an alerts run did.
type AlertSummary struct {
	Sent int
}

func (s AlertSummary) String() string {
	return fmt.Sprintf("Done. Emails sent this run: %d", s.Sent)
}

// AlertRunner polls a subreddit feed and emails entries that are new,
// recent, and pass the keyword filters.
type AlertRunner struct {
	Source   FeedSource
	Store    state.Store
	Sender   Sender
	Renderer Renderer

	Subreddit string
	Lookback  time.Duration
	Include   []string
	Exclude   []string

	From     string
	FromName string
	To       string

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

// Run performs one polling pass. Entries dropped as stale or filtered
// are recorded as seen; entries whose email failed to send are not, so
// the next run retries them. The seen set is saved only when it grew.
func (r *AlertRunner) Run(ctx context.Context) (AlertSummary, error) {
	var summary AlertSummary

	now := time.Now().UTC()
	if r.Now != nil {
		now = r.Now()
	}

	entries, err := r.Source.Fetch(ctx, feed.URL(r.Subreddit))
	if err != nil {
		return summary, fmt.Errorf("failed to fetch feed: %w", err)
	}

	seen, err := r.Store.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load seen set: %w", err)
	}

	dedup := feed.NewDeduplicator(seen, now.Add(-r.Lookback), feed.Filter{
		Include: r.Include,
		Exclude: r.Exclude,
	})

	for _, entry := range entries {
		outcome := dedup.Evaluate(entry)
		if outcome != feed.Deliver {
			continue
		}

		rendered, err := r.Renderer.RenderAlert(r.Subreddit, entry)
		if err != nil {
			log.Printf("Failed to render alert for %q: %v", entry.Key(), err)
			continue
		}
		msg := email.Message{
			To:       r.To,
			From:     r.From,
			FromName: r.FromName,
			Subject:  rendered.Subject,
			HTML:     rendered.HTML,
		}
		if err := r.Sender.Send(ctx, msg); err != nil {
			// Not marked seen: the next run re-evaluates this entry.
			log.Printf("Failed to send alert for %q: %v", entry.Key(), err)
			continue
		}

		dedup.MarkSeen(entry.Key())
		summary.Sent++
	}

	if dedup.Dirty() {
		if err := r.Store.Save(ctx, dedup.Seen()); err != nil {
			return summary, fmt.Errorf("failed to save seen set: %w", err)
		}
	}

	return summary, nil
}
