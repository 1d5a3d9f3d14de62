package extract

import (
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-message/mail"
)

// MIME implements Extractor on top of a structured message parser. It is
// stricter than the pattern-based default and additionally recovers the
// declared content type of each part, but rejects messages too malformed
// for MIME parsing, which then yield absent values like any other miss.
type MIME struct{}

// Headers parses the message header section and returns the raw values of
// the known headers. User-Agent is preferred over X-Mailer.
func (MIME) Headers(raw string) Headers {
	mr, err := mail.CreateReader(strings.NewReader(raw))
	if mr == nil {
		slog.Warn("structured header parse failed", "error", err)
		return Headers{}
	}

	h := mr.Header
	out := Headers{
		Subject:   strings.TrimSpace(h.Get("Subject")),
		From:      strings.TrimSpace(h.Get("From")),
		To:        strings.TrimSpace(h.Get("To")),
		ReplyTo:   strings.TrimSpace(h.Get("Reply-To")),
		Date:      strings.TrimSpace(h.Get("Date")),
		MessageID: strings.TrimSpace(h.Get("Message-Id")),
		UserAgent: strings.TrimSpace(h.Get("User-Agent")),
	}
	if out.UserAgent == "" {
		out.UserAgent = strings.TrimSpace(h.Get("X-Mailer"))
	}
	return out
}

// Attachments walks the MIME part tree and returns one entry per attachment
// or inline part that declares a filename, in order of appearance.
func (MIME) Attachments(raw string) []Attachment {
	mr, err := mail.CreateReader(strings.NewReader(raw))
	if mr == nil {
		slog.Warn("structured attachment parse failed", "error", err)
		return nil
	}

	var out []Attachment
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("failed to read message part", "error", err)
			break
		}

		var name string
		ctype := genericContentType
		switch h := part.Header.(type) {
		case *mail.AttachmentHeader:
			name, _ = h.Filename()
			if t, _, err := h.ContentType(); err == nil && t != "" {
				ctype = t
			}
		case *mail.InlineHeader:
			// Inline parts only count when they declare a filename.
			if _, params, err := h.ContentDisposition(); err == nil {
				name = params["filename"]
			}
			if t, _, err := h.ContentType(); err == nil && t != "" {
				ctype = t
			}
		}
		if name == "" {
			continue
		}
		out = append(out, Attachment{Name: name, Type: ctype})
	}
	return out
}
