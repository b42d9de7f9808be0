package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jarmeli1/reddit-rss-alerts/internal/email"
	"github.com/jarmeli1/reddit-rss-alerts/internal/feed"
	"github.com/jarmeli1/reddit-rss-alerts/internal/state"
	"github.com/jarmeli1/reddit-rss-alerts/internal/template"
)

type fakeSource struct {
	entries []feed.Entry
	url     string
}

func (f *fakeSource) Fetch(ctx context.Context, url string) ([]feed.Entry, error) {
	f.url = url
	return f.entries, nil
}

type fakeSender struct {
	sent    []email.Message
	failFor map[string]bool // by subject substring
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	for substr := range f.failFor {
		if strings.Contains(msg.Subject, substr) {
			return errAPIDown
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

var alertNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func entryAt(id, title string, age time.Duration) feed.Entry {
	ts := alertNow.Add(-age)
	return feed.Entry{
		ID:          id,
		Title:       title,
		Link:        "https://www.reddit.com/r/equipment/comments/" + id + "/x",
		Author:      "/u/poster",
		PublishedAt: &ts,
	}
}

func newAlertRunner(t *testing.T, src *fakeSource, store state.Store, sender *fakeSender) *AlertRunner {
	t.Helper()
	engine, err := template.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &AlertRunner{
		Source:    src,
		Store:     store,
		Sender:    sender,
		Renderer:  engine,
		Subreddit: "equipment",
		Lookback:  time.Hour,
		From:      "alerts@example.com",
		FromName:  "Reddit Alerts",
		To:        "user@example.com",
		Now:       func() time.Time { return alertNow },
	}
}

func TestAlertRunSendsNewEntries(t *testing.T) {
	src := &fakeSource{entries: []feed.Entry{
		entryAt("1abc", "Used excavator for sale", 10*time.Minute),
		entryAt("2def", "Crane question", 20*time.Minute),
	}}
	store := state.NewMemory()
	sender := &fakeSender{}

	summary, err := newAlertRunner(t, src, store, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if src.url != "https://www.reddit.com/r/equipment/new/.rss" {
		t.Errorf("fetched url = %q", src.url)
	}
	if summary.Sent != 2 {
		t.Errorf("Sent = %d, want 2", summary.Sent)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("got %d emails", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.To != "user@example.com" || msg.From != "alerts@example.com" || msg.FromName != "Reddit Alerts" {
		t.Errorf("message envelope = %+v", msg)
	}
	if msg.Subject != "[r/equipment] Used excavator for sale" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "/u/poster") {
		t.Error("HTML missing author")
	}

	if store.Saves() != 1 {
		t.Errorf("Saves = %d, want 1", store.Saves())
	}
	for _, id := range []string{"1abc", "2def"} {
		if !store.Contains(id) {
			t.Errorf("id %q not persisted", id)
		}
	}
}

func TestAlertRunSkipsSeenStaleAndFiltered(t *testing.T) {
	src := &fakeSource{entries: []feed.Entry{
		entryAt("seen1", "Already delivered", 10*time.Minute),
		entryAt("old1", "Ancient listing", 3*time.Hour),
		entryAt("spam1", "Crane rental spam", 5*time.Minute),
		entryAt("new1", "Fresh excavator", 5*time.Minute),
	}}
	store := state.NewMemory("seen1")
	sender := &fakeSender{}

	r := newAlertRunner(t, src, store, sender)
	r.Exclude = []string{"spam"}

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Sent != 1 {
		t.Errorf("Sent = %d, want 1", summary.Sent)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].Subject, "Fresh excavator") {
		t.Errorf("sent = %+v", sender.sent)
	}

	// Stale and filtered entries join the seen set so later runs skip
	// them outright.
	for _, id := range []string{"seen1", "old1", "spam1", "new1"} {
		if !store.Contains(id) {
			t.Errorf("id %q not persisted", id)
		}
	}
}

func TestAlertRunFailedSendNotMarkedSeen(t *testing.T) {
	src := &fakeSource{entries: []feed.Entry{
		entryAt("ok1", "Good entry", 5*time.Minute),
		entryAt("bad1", "Broken entry", 6*time.Minute),
	}}
	store := state.NewMemory()
	sender := &fakeSender{failFor: map[string]bool{"Broken": true}}

	summary, err := newAlertRunner(t, src, store, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Sent != 1 {
		t.Errorf("Sent = %d, want 1", summary.Sent)
	}
	if !store.Contains("ok1") {
		t.Error("delivered entry not persisted")
	}
	if store.Contains("bad1") {
		t.Error("failed entry must stay out of the seen set for retry")
	}
}

func TestAlertRunNoChangesNoSave(t *testing.T) {
	src := &fakeSource{entries: []feed.Entry{
		entryAt("seen1", "Already delivered", 10*time.Minute),
	}}
	store := state.NewMemory("seen1")
	sender := &fakeSender{}

	summary, err := newAlertRunner(t, src, store, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Sent != 0 {
		t.Errorf("Sent = %d, want 0", summary.Sent)
	}
	if store.Saves() != 0 {
		t.Errorf("Saves = %d, want 0 when nothing changed", store.Saves())
	}
}

func TestAlertSummaryString(t *testing.T) {
	s := AlertSummary{Sent: 3}
	if got := s.String(); got != "Done. Emails sent this run: 3" {
		t.Errorf("String() = %q", got)
	}
}
