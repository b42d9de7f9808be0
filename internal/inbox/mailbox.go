package inbox

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jarmeli1/reddit-rss-alerts/internal/config"
)

// Mailbox is the IMAP transport behind both inbox drivers. It lists unread
// messages, fetches them without flipping the \Seen flag, and marks them
// seen once a driver has committed to an outcome.
type Mailbox struct {
	config config.MailboxConfig
	client *client.Client
}

// NewMailbox creates a mailbox transport for the configured account.
func NewMailbox(cfg config.MailboxConfig) *Mailbox {
	return &Mailbox{config: cfg}
}

// Connect dials the IMAP server, logs in and selects the configured folder.
func (m *Mailbox) Connect(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	log.Printf("Connecting to IMAP server %s...", addr)

	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(m.config.User, m.config.Password); err != nil {
		c.Logout()
		return fmt.Errorf("failed to login as %s: %w", m.config.User, err)
	}

	if _, err := c.Select(m.config.Folder, false); err != nil {
		c.Logout()
		return fmt.Errorf("failed to select mailbox %s: %w", m.config.Folder, err)
	}

	m.client = c
	return nil
}

// Disconnect closes the IMAP connection.
func (m *Mailbox) Disconnect() error {
	if m.client != nil {
		return m.client.Logout()
	}
	return nil
}

// ListUnread returns the UIDs of all unread messages in retrieval order.
func (m *Mailbox) ListUnread() ([]uint32, error) {
	if m.client == nil {
		return nil, fmt.Errorf("not connected to IMAP server")
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := m.client.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search for unread messages: %w", err)
	}
	return uids, nil
}

// Peek fetches the full raw message without setting the \Seen flag, so the
// router can inspect a message before any driver commits to it.
func (m *Mailbox) Peek(uid uint32) ([]byte, error) {
	if m.client == nil {
		return nil, fmt.Errorf("not connected to IMAP server")
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.client.UidFetch(seqSet, items, messages)
	}()

	var raw []byte
	for msg := range messages {
		r := msg.GetBody(section)
		if r == nil {
			continue
		}
		b, err := io.ReadAll(r)
		if err != nil {
			log.Printf("Warning: failed to read body of message %d: %v", uid, err)
			continue
		}
		raw = b
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch message %d: %w", uid, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("message %d has no body section", uid)
	}
	return raw, nil
}

// MarkSeen sets the \Seen flag on a message. This is the terminal action
// for both delivered and unroutable messages.
func (m *Mailbox) MarkSeen(uid uint32) error {
	if m.client == nil {
		return fmt.Errorf("not connected to IMAP server")
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := m.client.UidStore(seqSet, item, flags, nil); err != nil {
		return fmt.Errorf("failed to mark message %d seen: %w", uid, err)
	}
	return nil
}
