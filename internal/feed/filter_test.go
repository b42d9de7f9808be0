package feed

import "testing"

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		entry  Entry
		want   bool
	}{
		{
			name:  "no rules passes everything",
			entry: Entry{Title: "anything at all"},
			want:  true,
		},
		{
			name:   "include keyword in title passes",
			filter: Filter{Include: []string{"excavator"}},
			entry:  Entry{Title: "Used Excavator for sale"},
			want:   true,
		},
		{
			name:   "include keyword missing fails",
			filter: Filter{Include: []string{"excavator"}},
			entry:  Entry{Title: "Lawnmower, barely used"},
			want:   false,
		},
		{
			name:   "exclude keyword rejects",
			filter: Filter{Exclude: []string{"rental"}},
			entry:  Entry{Title: "Crane rental available"},
			want:   false,
		},
		{
			name:   "exclude wins over include",
			filter: Filter{Include: []string{"crane"}, Exclude: []string{"rental"}},
			entry:  Entry{Title: "Crane rental available"},
			want:   false,
		},
		{
			name:   "include matches in summary",
			filter: Filter{Include: []string{"excavator"}},
			entry:  Entry{Title: "New listing", Summary: "2015 excavator, 3000 hours"},
			want:   true,
		},
		{
			name:   "include matches in author",
			filter: Filter{Include: []string{"dealerbot"}},
			entry:  Entry{Title: "Listing", Author: "/u/DealerBot"},
			want:   true,
		},
		{
			name:   "matching is case-insensitive",
			filter: Filter{Include: []string{"excavator"}},
			entry:  Entry{Title: "EXCAVATOR AUCTION"},
			want:   true,
		},
		{
			name:   "keyword inside markup tags does not match",
			filter: Filter{Include: []string{"href"}},
			entry:  Entry{Summary: `<a href="https://example.com">a listing</a>`},
			want:   false,
		},
		{
			name:   "keyword in rendered markup text matches",
			filter: Filter{Include: []string{"excavator"}},
			entry:  Entry{Summary: `<p>One <b>excavator</b>, good shape</p>`},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.entry); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
