package inbox

import "strings"

// TrimReplyBody strips quoted history and forwarded headers from a reply
// body, best effort. Lines before the first quote boundary are kept
// verbatim; trailing and leading whitespace is stripped from the result.
// Trimming an already quote-free body returns it unchanged.
func TrimReplyBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if isQuoteBoundary(line) {
			break
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// isQuoteBoundary reports whether a line starts the quoted/forwarded tail
// of a reply: a "> " quote marker, an "On ... wrote:" attribution, or a
// forwarded "From: " header.
func isQuoteBoundary(line string) bool {
	if strings.HasPrefix(line, ">") {
		return true
	}
	if strings.HasPrefix(line, "On ") {
		if strings.HasSuffix(strings.TrimRight(line, " \t"), "wrote") {
			return true
		}
		if strings.Contains(line, " wrote:") {
			return true
		}
	}
	return strings.HasPrefix(line, "From: ")
}
