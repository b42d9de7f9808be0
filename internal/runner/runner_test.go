package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// fakeMailbox serves canned raw messages and records flag changes.
type fakeMailbox struct {
	messages map[uint32][]byte
	order    []uint32
	seen     map[uint32]bool
	peekErr  map[uint32]error
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		messages: make(map[uint32][]byte),
		seen:     make(map[uint32]bool),
		peekErr:  make(map[uint32]error),
	}
}

func (m *fakeMailbox) add(uid uint32, raw string) {
	m.messages[uid] = []byte(raw)
	m.order = append(m.order, uid)
}

func (m *fakeMailbox) ListUnread() ([]uint32, error) {
	return append([]uint32(nil), m.order...), nil
}

func (m *fakeMailbox) Peek(uid uint32) ([]byte, error) {
	if err := m.peekErr[uid]; err != nil {
		return nil, err
	}
	return m.messages[uid], nil
}

func (m *fakeMailbox) MarkSeen(uid uint32) error {
	m.seen[uid] = true
	return nil
}

type submitCall struct {
	subreddit, title, body string
}

type fakePoster struct {
	calls []submitCall
	err   error
}

func (p *fakePoster) SubmitPost(ctx context.Context, subreddit, title, body string) error {
	if p.err != nil {
		return p.err
	}
	p.calls = append(p.calls, submitCall{subreddit, title, body})
	return nil
}

type commentCall struct {
	permalink, body string
}

type fakeCommenter struct {
	calls []commentCall
	err   error
}

func (c *fakeCommenter) ReplyToThread(ctx context.Context, permalink, body string) error {
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, commentCall{permalink, body})
	return nil
}

var errAPIDown = errors.New("reddit: 503 service unavailable")

// crlf rewrites \n to \r\n so literals read like wire-format messages.
func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func rawEmail(from, subject, body string) string {
	return crlf(fmt.Sprintf(`From: %s
To: bridge@example.com
Subject: %s
Content-Type: text/plain; charset=utf-8

%s`, from, subject, body))
}
