package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Filter applies include/exclude keyword rules to an entry. Keywords are
// expected case-folded (config.SplitKeywords does this); matching is a
// case-insensitive substring test over title, summary and author, with
// the summary's markup stripped so rules match rendered text, not tags.
type Filter struct {
	Include []string
	Exclude []string
}

// Match reports whether an entry passes: no include list or at least one
// include keyword present, and no exclude keyword present.
func (f Filter) Match(e Entry) bool {
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return true
	}

	text := strings.ToLower(strings.Join([]string{e.Title, summaryText(e.Summary), e.Author}, " \n "))

	if len(f.Include) > 0 && !containsAny(text, f.Include) {
		return false
	}
	if containsAny(text, f.Exclude) {
		return false
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// summaryText strips markup from a summary. Plain summaries pass through
// untouched; unparseable markup falls back to the raw text.
func summaryText(summary string) string {
	if !strings.Contains(summary, "<") {
		return summary
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return summary
	}
	return doc.Text()
}
