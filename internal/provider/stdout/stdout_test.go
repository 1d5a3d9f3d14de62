package stdout

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/don-san-sec/samurai/internal/email"
)

func TestSendWritesReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	rep := &email.Report{
		Recipient: "security@example.com",
		Subject:   "[PHISHING] Win $$$",
		PlainBody: "PHISHING REPORT\n\nplain body",
		Artifact: email.Artifact{
			Filename:    "phishing_report_2024-03-05_10-15-30_Win.eml",
			ContentType: "message/rfc822",
			Content:     []byte("original"),
		},
	}

	if err := p.Send(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"To: security@example.com",
		"Subject: [PHISHING] Win $$$",
		"Artifact: phishing_report_2024-03-05_10-15-30_Win.eml (message/rfc822, 8 B)",
		"PHISHING REPORT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	if got := New().Name(); got != "stdout" {
		t.Errorf("got %q, want stdout", got)
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d): got %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
