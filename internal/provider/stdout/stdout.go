// Package stdout implements a Provider that prints reports to standard output.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/don-san-sec/samurai/internal/email"
)

// Provider prints reports to stdout in a human-readable format. Useful for
// development and for dry-running a deployment before pointing it at SES.
type Provider struct {
	writer io.Writer
}

// New creates a new stdout Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a new stdout Provider that writes to the given writer.
// This is useful for testing.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints the report to stdout. It always returns nil (success).
func (p *Provider) Send(_ context.Context, rep *email.Report) error {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString(fmt.Sprintf("To: %s\n", rep.Recipient))
	b.WriteString(fmt.Sprintf("Subject: %s\n", rep.Subject))
	b.WriteString(fmt.Sprintf("Artifact: %s (%s, %s)\n",
		rep.Artifact.Filename, rep.Artifact.ContentType, formatSize(len(rep.Artifact.Content))))
	b.WriteString("Body:\n")
	b.WriteString(rep.PlainBody + "\n")
	b.WriteString("========================================\n")

	fmt.Fprint(p.writer, b.String())
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
