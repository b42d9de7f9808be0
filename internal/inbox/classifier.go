package inbox

import "strings"

// Decision is the routing outcome for one message subject.
type Decision int

const (
	// Accept routes the message to this driver's workflow.
	Accept Decision = iota
	// Defer leaves the message unread for the sibling workflow to claim.
	Defer
	// Skip marks the message seen so neither workflow re-inspects it.
	Skip
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Defer:
		return "defer"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// Router assigns a message subject to one of the two mailbox workflows.
// Primary is this driver's subject prefix; Sibling is the other driver's,
// used to recognize messages that must be left for it. The two drivers run
// back-to-back over the same mailbox, so the deferral rule is what keeps
// them from double-processing or starving a message.
type Router struct {
	Primary string
	Sibling string
}

// Route classifies a subject. An empty Primary disables prefix filtering
// and accepts every message.
func (r Router) Route(subject string) Decision {
	if r.Primary == "" {
		return Accept
	}
	if strings.HasPrefix(subject, r.Primary) {
		return Accept
	}
	if r.Sibling != "" && strings.HasPrefix(subject, r.Sibling) {
		return Defer
	}
	return Skip
}

// Title extracts the post title a subject encodes: the primary prefix is
// removed and surrounding whitespace trimmed. An empty result falls back
// to a placeholder so the submission never fails on a blank title.
func (r Router) Title(subject string) string {
	title := strings.TrimSpace(strings.TrimPrefix(subject, r.Primary))
	if title == "" {
		return "(untitled email)"
	}
	return title
}
