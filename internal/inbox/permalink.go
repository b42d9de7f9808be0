package inbox

import (
	"regexp"
	"strings"
)

// permalinkRe matches a canonical Reddit thread permalink: fixed host,
// community segment, the /comments/ marker, a base36 thread id and a slug.
var permalinkRe = regexp.MustCompile(
	`(?i)https?://www\.reddit\.com/r/[A-Za-z0-9_]+/comments/([0-9a-z]+)/[0-9a-z_%-]+`,
)

// ExtractPermalink finds the first thread permalink in a message. The full
// raw message is scanned first, so a permalink kept only in quoted HTML or
// headers still counts; the trimmed body is the fallback. Returns "" when
// no permalink is present.
func ExtractPermalink(raw, trimmed string) string {
	if m := permalinkRe.FindString(raw); m != "" {
		return m
	}
	return permalinkRe.FindString(trimmed)
}

// ThreadID returns the API fullname (t3_<id>) encoded in a permalink, or
// "" if the URL does not carry a thread id.
func ThreadID(permalink string) string {
	m := permalinkRe.FindStringSubmatch(permalink)
	if len(m) < 2 {
		return ""
	}
	return "t3_" + strings.ToLower(m[1])
}
