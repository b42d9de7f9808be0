package feed

import (
	"net/mail"
	"time"
)

// Outcome classifies one entry against the seen set, the lookback window
// and the keyword rules.
type Outcome int

const (
	// Deliver means the entry is new, recent and passes the filter.
	Deliver Outcome = iota
	// Duplicate means the key is already in the seen set; no state change.
	Duplicate
	// Stale means the entry predates the lookback window; marked seen.
	Stale
	// Filtered means the keyword rules rejected the entry; marked seen.
	Filtered
	// Unkeyed means the entry has no id and no link; dropped silently.
	Unkeyed
)

func (o Outcome) String() string {
	switch o {
	case Deliver:
		return "deliver"
	case Duplicate:
		return "duplicate"
	case Stale:
		return "stale"
	case Filtered:
		return "filtered"
	case Unkeyed:
		return "unkeyed"
	default:
		return "unknown"
	}
}

// Deduplicator partitions a feed snapshot against the persisted seen set.
// Every keyed entry observed during a run enters the set regardless of
// delivery outcome — except Deliver, which the caller confirms via
// MarkSeen only after the send succeeded, so a failed send is retried on
// the next scheduled run. The set only grows within a run.
type Deduplicator struct {
	seen   map[string]struct{}
	cutoff time.Time
	filter Filter
	dirty  bool
}

// NewDeduplicator wraps a previously persisted seen set. Entries at or
// after cutoff count as recent; the boundary is inclusive.
func NewDeduplicator(seen map[string]struct{}, cutoff time.Time, filter Filter) *Deduplicator {
	if seen == nil {
		seen = make(map[string]struct{})
	}
	return &Deduplicator{seen: seen, cutoff: cutoff, filter: filter}
}

// Evaluate classifies one entry and records Stale and Filtered keys as
// seen. A Deliver outcome leaves the key unrecorded until MarkSeen.
func (d *Deduplicator) Evaluate(e Entry) Outcome {
	key := e.Key()
	if key == "" {
		return Unkeyed
	}
	if _, ok := d.seen[key]; ok {
		return Duplicate
	}
	if ts, ok := entryTime(e); ok && ts.Before(d.cutoff) {
		d.mark(key)
		return Stale
	}
	if !d.filter.Match(e) {
		d.mark(key)
		return Filtered
	}
	return Deliver
}

// MarkSeen records a delivered entry's key after a successful send.
func (d *Deduplicator) MarkSeen(key string) {
	if key != "" {
		d.mark(key)
	}
}

// Dirty reports whether any key was added this run; the caller persists
// the set only then, avoiding unnecessary writes.
func (d *Deduplicator) Dirty() bool { return d.dirty }

// Seen returns the live set for persistence.
func (d *Deduplicator) Seen() map[string]struct{} { return d.seen }

func (d *Deduplicator) mark(key string) {
	if _, ok := d.seen[key]; !ok {
		d.seen[key] = struct{}{}
		d.dirty = true
	}
}

// entryTime resolves an entry's timestamp: structured published time,
// then structured updated time, then a best-effort parse of the raw
// RFC-822-style date strings. Entries with no resolvable timestamp are
// treated as recent enough, so undateable content is never silently lost.
func entryTime(e Entry) (time.Time, bool) {
	if e.PublishedAt != nil {
		return *e.PublishedAt, true
	}
	if e.UpdatedAt != nil {
		return *e.UpdatedAt, true
	}
	for _, raw := range []string{e.Published, e.Updated} {
		if raw == "" {
			continue
		}
		if t, err := mail.ParseDate(raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
