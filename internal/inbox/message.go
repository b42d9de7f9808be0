package inbox

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // register charset decoding for headers and bodies
	"github.com/emersion/go-message/mail"
)

// Message is the canonical text form of one raw mail object. Header values
// are RFC 2047 decoded, the body is the first text/plain non-attachment
// part converted to UTF-8. Raw keeps the undecoded message text so the
// permalink scan can see URLs buried in quoted HTML or headers.
type Message struct {
	Subject string
	From    string
	Body    string
	Raw     string
}

// ParseMessage decodes a raw message into its canonical form. Decoding is
// best effort and never fails outright: an undecodable header falls back to
// its raw value, an undecodable body to UTF-8 with replacement runes, and a
// message with no text/plain part yields an empty Body.
func ParseMessage(raw []byte) *Message {
	msg := &Message{Raw: string(raw)}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && mr == nil {
		return msg
	}

	msg.Subject = decodeHeader(mr.Header, "Subject")
	msg.From = decodeHeader(mr.Header, "From")

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			break
		}
		if p == nil {
			break
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			// Attachments are never the message body.
			continue
		}
		ct, _, ctErr := h.ContentType()
		if ctErr != nil || ct != "text/plain" {
			continue
		}

		body, readErr := io.ReadAll(p.Body)
		if readErr != nil && len(body) == 0 {
			continue
		}
		msg.Body = strings.ToValidUTF8(string(body), string(utf8.RuneError))
		break
	}

	return msg
}

// decodeHeader returns the decoded header text, falling back to the raw
// header value when the encoded word or charset cannot be decoded.
func decodeHeader(h mail.Header, key string) string {
	text, err := h.Text(key)
	if err != nil {
		return h.Get(key)
	}
	return text
}
