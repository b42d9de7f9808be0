package runner

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jarmeli1/reddit-rss-alerts/internal/inbox"
)

// PostSummary reports what a post run did.
type PostSummary struct {
	Posted   int
	Skipped  int
	Deferred int
}

func (s PostSummary) String() string {
	out := fmt.Sprintf("Done. Posted: %d; Skipped: %d", s.Posted, s.Skipped)
	if s.Deferred > 0 {
		out += fmt.Sprintf("; Deferred to replies: %d", s.Deferred)
	}
	return out
}

// PostRunner turns unread prefixed emails into new Reddit posts.
type PostRunner struct {
	Mailbox   Mailbox
	Poster    Poster
	Router    inbox.Router
	Subreddit string
}

// Run processes every unread message once. Messages are marked seen on
// success and on terminal skips; failed submissions stay unread so a
// later run can retry them.
func (r *PostRunner) Run(ctx context.Context) (PostSummary, error) {
	var summary PostSummary

	uids, err := r.Mailbox.ListUnread()
	if err != nil {
		return summary, fmt.Errorf("failed to list unread messages: %w", err)
	}
	if len(uids) == 0 {
		log.Printf("No unread emails to process.")
		return summary, nil
	}

	for _, uid := range uids {
		raw, err := r.Mailbox.Peek(uid)
		if err != nil {
			log.Printf("Failed to fetch message %d: %v", uid, err)
			continue
		}
		msg := inbox.ParseMessage(raw)

		switch r.Router.Route(msg.Subject) {
		case inbox.Defer:
			log.Printf("Subject matches reply prefix; leaving unread for the reply handler.")
			summary.Deferred++
			continue
		case inbox.Skip:
			log.Printf("Skipping email from %q: subject missing prefix %q.", msg.From, r.Router.Primary)
			r.markSeen(uid)
			summary.Skipped++
			continue
		}

		title := r.Router.Title(msg.Subject)
		body := strings.TrimSpace(msg.Body)
		if body == "" {
			log.Printf("Skipping email %q: no text/plain body found.", msg.Subject)
			r.markSeen(uid)
			summary.Skipped++
			continue
		}

		if err := r.Poster.SubmitPost(ctx, r.Subreddit, title, body); err != nil {
			// Leave the email unread so the submission can be retried.
			log.Printf("Failed to submit post for email %q: %v", title, err)
			continue
		}
		log.Printf("Posted email %q to r/%s.", title, r.Subreddit)
		summary.Posted++
		r.markSeen(uid)
	}

	return summary, nil
}

func (r *PostRunner) markSeen(uid uint32) {
	if err := r.Mailbox.MarkSeen(uid); err != nil {
		log.Printf("Warning: failed to mark message %d seen: %v", uid, err)
	}
}
