// Package runner drives the three batch workflows: email-to-post,
// email-to-comment, and feed-to-email alerts. Each run is a single
// pass; retries happen by re-invoking the binary, because unread mail
// stays unread and unsent feed entries stay out of the seen set.
package runner

import (
	"context"

	"github.com/jarmeli1/reddit-rss-alerts/internal/email"
	"github.com/jarmeli1/reddit-rss-alerts/internal/feed"
	"github.com/jarmeli1/reddit-rss-alerts/internal/template"
)

// Mailbox is the slice of the IMAP client the inbox workflows need.
type Mailbox interface {
	ListUnread() ([]uint32, error)
	Peek(uid uint32) ([]byte, error)
	MarkSeen(uid uint32) error
}

// Poster submits a new self post.
type Poster interface {
	SubmitPost(ctx context.Context, subreddit, title, body string) error
}

// Commenter replies to an existing thread.
type Commenter interface {
	ReplyToThread(ctx context.Context, permalink, body string) error
}

// FeedSource fetches feed entries for the alerts workflow.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]feed.Entry, error)
}

// Renderer turns a feed entry into an alert email.
type Renderer interface {
	RenderAlert(subreddit string, entry feed.Entry) (*template.Email, error)
}

// Sender is satisfied by the email package's providers.
type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}
