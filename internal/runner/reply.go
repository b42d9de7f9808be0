package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/jarmeli1/reddit-rss-alerts/internal/inbox"
)

// ReplySummary reports what a reply run did.
type ReplySummary struct {
	Commented int
	Skipped   int
	Deferred  int
}

func (s ReplySummary) String() string {
	out := fmt.Sprintf("Done. Comments posted: %d; Skipped: %d", s.Commented, s.Skipped)
	if s.Deferred > 0 {
		out += fmt.Sprintf("; Deferred to posts: %d", s.Deferred)
	}
	return out
}

// ReplyRunner turns unread reply emails into Reddit comments on the
// thread their permalink points at.
type ReplyRunner struct {
	Mailbox   Mailbox
	Commenter Commenter
	Router    inbox.Router
}

// Run processes every unread message once. A missing comment body or
// permalink is terminal and marks the message seen; a failed comment
// submission leaves it unread for retry.
func (r *ReplyRunner) Run(ctx context.Context) (ReplySummary, error) {
	var summary ReplySummary

	uids, err := r.Mailbox.ListUnread()
	if err != nil {
		return summary, fmt.Errorf("failed to list unread messages: %w", err)
	}
	if len(uids) == 0 {
		log.Printf("No unread replies to process.")
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
			log.Printf("Subject matches new post prefix; leaving unread for the post handler.")
			summary.Deferred++
			continue
		case inbox.Skip:
			log.Printf("Skipping email from %q: subject missing reply prefix %q.", msg.From, r.Router.Primary)
			r.markSeen(uid)
			summary.Skipped++
			continue
		}

		body := inbox.TrimReplyBody(msg.Body)
		if body == "" {
			log.Printf("Skipping reply %q: no comment body detected.", msg.Subject)
			r.markSeen(uid)
			summary.Skipped++
			continue
		}

		permalink := inbox.ExtractPermalink(msg.Raw, body)
		if permalink == "" {
			log.Printf("Skipping reply %q: no Reddit permalink found.", msg.Subject)
			r.markSeen(uid)
			summary.Skipped++
			continue
		}

		if err := r.Commenter.ReplyToThread(ctx, permalink, body); err != nil {
			// Leave unread so the comment can be retried.
			log.Printf("Failed to comment on %s: %v", permalink, err)
			continue
		}
		log.Printf("Commented on %s with %d chars.", permalink, len(body))
		summary.Commented++
		r.markSeen(uid)
	}

	return summary, nil
}

func (r *ReplyRunner) markSeen(uid uint32) {
	if err := r.Mailbox.MarkSeen(uid); err != nil {
		log.Printf("Warning: failed to mark message %d seen: %v", uid, err)
	}
}
