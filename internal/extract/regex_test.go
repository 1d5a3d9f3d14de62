package extract

import (
	"strings"
	"testing"
)

func TestRegexHeadersBasic(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: Attacker <bad@evil.com>",
		"To: victim@example.com",
		"Subject: Win $$$",
		"Reply-To: collector@evil.com",
		"Date: Tue, 05 Mar 2024 10:15:30 +0000",
		"Message-ID: <abc123@evil.com>",
		"X-Mailer: EvilMailer 1.0",
		"",
		"Click here.",
	}, "\r\n")

	h := Regex{}.Headers(raw)

	if h.From != "Attacker <bad@evil.com>" {
		t.Errorf("From: got %q", h.From)
	}
	if h.To != "victim@example.com" {
		t.Errorf("To: got %q", h.To)
	}
	if h.Subject != "Win $$$" {
		t.Errorf("Subject: got %q", h.Subject)
	}
	if h.ReplyTo != "collector@evil.com" {
		t.Errorf("ReplyTo: got %q", h.ReplyTo)
	}
	if h.Date != "Tue, 05 Mar 2024 10:15:30 +0000" {
		t.Errorf("Date: got %q", h.Date)
	}
	if h.MessageID != "<abc123@evil.com>" {
		t.Errorf("MessageID: got %q", h.MessageID)
	}
	if h.UserAgent != "EvilMailer 1.0" {
		t.Errorf("UserAgent: got %q", h.UserAgent)
	}
}

func TestRegexHeadersCaseInsensitive(t *testing.T) {
	t.Parallel()

	raw := "SUBJECT: shouting\r\nfrom: lower@example.com\r\n\r\nbody"

	h := Regex{}.Headers(raw)
	if h.Subject != "shouting" {
		t.Errorf("Subject: got %q, want %q", h.Subject, "shouting")
	}
	if h.From != "lower@example.com" {
		t.Errorf("From: got %q, want %q", h.From, "lower@example.com")
	}
}

func TestRegexHeadersStopAtBlankLine(t *testing.T) {
	t.Parallel()

	// A header-looking line in the body must not be picked up.
	raw := strings.Join([]string{
		"From: real@example.com",
		"",
		"Subject: fake body subject",
	}, "\n")

	h := Regex{}.Headers(raw)
	if h.Subject != "" {
		t.Errorf("Subject: got %q, want absent", h.Subject)
	}
	if h.From != "real@example.com" {
		t.Errorf("From: got %q", h.From)
	}
}

func TestRegexHeadersUnixLineEndings(t *testing.T) {
	t.Parallel()

	raw := "Subject: LF only\nFrom: a@b.com\n\nbody"

	h := Regex{}.Headers(raw)
	if h.Subject != "LF only" {
		t.Errorf("Subject: got %q, want %q", h.Subject, "LF only")
	}
}

func TestRegexHeadersFirstMatchWins(t *testing.T) {
	t.Parallel()

	raw := "Subject: first\r\nSubject: second\r\n\r\n"

	h := Regex{}.Headers(raw)
	if h.Subject != "first" {
		t.Errorf("Subject: got %q, want %q", h.Subject, "first")
	}
}

func TestRegexHeadersUserAgentPreferredOverXMailer(t *testing.T) {
	t.Parallel()

	raw := "X-Mailer: MailerX\r\nUser-Agent: AgentY\r\n\r\n"

	h := Regex{}.Headers(raw)
	if h.UserAgent != "AgentY" {
		t.Errorf("UserAgent: got %q, want %q", h.UserAgent, "AgentY")
	}
}

func TestRegexHeadersMissingAreAbsent(t *testing.T) {
	t.Parallel()

	h := Regex{}.Headers("not an email at all")

	if h.Subject != "" || h.ReplyTo != "" || h.MessageID != "" || h.UserAgent != "" {
		t.Errorf("expected absent headers, got %+v", h)
	}
}

func TestRegexHeadersHeaderlessInput(t *testing.T) {
	t.Parallel()

	// Malformed input must not panic or error, only yield absence.
	h := Regex{}.Headers("")
	if h != (Headers{}) {
		t.Errorf("expected zero Headers, got %+v", h)
	}
}

func TestRegexAttachmentsQuotedAndEncoded(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"Subject: two files",
		"",
		"--b1",
		`Content-Disposition: attachment; filename="a.txt"`,
		"",
		"--b1",
		"Content-Disposition: attachment; filename*=UTF-8''b%20c.txt",
		"",
		"--b1",
		`Content-Disposition: attachment; filename*="UTF-8''d%20e.txt"`,
		"",
		"--b1--",
	}, "\r\n")

	atts := Regex{}.Attachments(raw)
	if len(atts) != 3 {
		t.Fatalf("got %d attachments, want 3", len(atts))
	}
	if atts[0].Name != "a.txt" {
		t.Errorf("atts[0]: got %q, want %q", atts[0].Name, "a.txt")
	}
	if atts[1].Name != "b c.txt" {
		t.Errorf("atts[1]: got %q, want %q", atts[1].Name, "b c.txt")
	}
	if atts[2].Name != "d e.txt" {
		t.Errorf("atts[2]: got %q, want %q", atts[2].Name, "d e.txt")
	}
	for i, att := range atts {
		if att.Type != "application/octet-stream" {
			t.Errorf("atts[%d].Type: got %q, want generic", i, att.Type)
		}
	}
}

func TestRegexAttachmentsInlineDisposition(t *testing.T) {
	t.Parallel()

	raw := `Content-Disposition: inline; filename="logo.png"` + "\r\n"

	atts := Regex{}.Attachments(raw)
	if len(atts) != 1 || atts[0].Name != "logo.png" {
		t.Fatalf("got %+v, want one logo.png entry", atts)
	}
}

func TestRegexAttachmentsDuplicatesPreserved(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		`Content-Disposition: attachment; filename="same.pdf"`,
		`Content-Disposition: attachment; filename="same.pdf"`,
	}, "\r\n")

	atts := Regex{}.Attachments(raw)
	if len(atts) != 2 {
		t.Fatalf("got %d attachments, want 2 (duplicates are distinct parts)", len(atts))
	}
}

func TestRegexAttachmentsNone(t *testing.T) {
	t.Parallel()

	if atts := (Regex{}).Attachments("plain message, no parts"); len(atts) != 0 {
		t.Errorf("got %+v, want none", atts)
	}
}
