package extract

import (
	"strings"
	"testing"
)

func TestMIMEHeaders(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: Structured test",
		"Message-Id: <m1@example.com>",
		"User-Agent: Thunderbird",
		"Content-Type: text/plain",
		"",
		"Body text.",
	}, "\r\n")

	h := MIME{}.Headers(raw)

	if h.From != "sender@example.com" {
		t.Errorf("From: got %q", h.From)
	}
	if h.Subject != "Structured test" {
		t.Errorf("Subject: got %q", h.Subject)
	}
	if h.MessageID != "<m1@example.com>" {
		t.Errorf("MessageID: got %q", h.MessageID)
	}
	if h.UserAgent != "Thunderbird" {
		t.Errorf("UserAgent: got %q", h.UserAgent)
	}
}

func TestMIMEHeadersXMailerFallback(t *testing.T) {
	t.Parallel()

	raw := "X-Mailer: Outlook\r\nContent-Type: text/plain\r\n\r\nhi"

	h := MIME{}.Headers(raw)
	if h.UserAgent != "Outlook" {
		t.Errorf("UserAgent: got %q, want %q", h.UserAgent, "Outlook")
	}
}

func TestMIMEAttachments(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: With attachment",
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=mixedboundary",
		"",
		"--mixedboundary",
		"Content-Type: text/plain",
		"",
		"Email body text",
		"--mixedboundary",
		`Content-Type: application/pdf; name="report.pdf"`,
		`Content-Disposition: attachment; filename="report.pdf"`,
		"Content-Transfer-Encoding: base64",
		"",
		"SGVsbG8gV29ybGQ=",
		"--mixedboundary--",
	}, "\r\n")

	atts := MIME{}.Attachments(raw)
	if len(atts) != 1 {
		t.Fatalf("got %d attachments, want 1", len(atts))
	}
	if atts[0].Name != "report.pdf" {
		t.Errorf("Name: got %q, want %q", atts[0].Name, "report.pdf")
	}
	if atts[0].Type != "application/pdf" {
		t.Errorf("Type: got %q, want %q", atts[0].Type, "application/pdf")
	}
}

func TestMIMEMalformedYieldsAbsence(t *testing.T) {
	t.Parallel()

	h := MIME{}.Headers("\x00garbage")
	if h.Subject != "" && h.From != "" {
		t.Errorf("expected absent headers for garbage input, got %+v", h)
	}
	if atts := (MIME{}).Attachments("\x00garbage"); len(atts) != 0 {
		t.Errorf("expected no attachments for garbage input, got %+v", atts)
	}
}
