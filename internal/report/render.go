// Package report renders analyst-facing report bodies from an extracted
// record and names the preserved .eml artifact.
package report

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/don-san-sec/samurai/internal/email"
)

// ErrInvalidReporterIdentity is returned when the acting user's identity is
// missing or not shaped like an email address. Rendering refuses to build
// any body in that case; a corrupted identity context is a configuration
// problem, not something a retry fixes.
var ErrInvalidReporterIdentity = errors.New("reporter identity is not a valid email address")

var reporterIdentityRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// timeLayout formats report timestamps, always in UTC.
const timeLayout = "2006-01-02 15:04:05"

const actionRequired = "ACTION REQUIRED: User has requested investigation and expects a response."

// Renderer builds the plain-text and HTML report bodies for a record. It is
// a pure function of the record apart from the report timestamp clock.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a Renderer using the wall clock.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererWithClock creates a Renderer with a custom clock, used for
// deterministic output in tests.
func NewRendererWithClock(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

// Render produces the plain-text and HTML bodies of a report. Every value
// that originates from the untrusted message is passed through EscapeHTML
// before interpolation into the HTML body; this is a security invariant,
// since those values are attacker-controlled.
func (r *Renderer) Render(rec *email.Record, kind email.ReportKind, reporter string) (plain, html string, err error) {
	if !reporterIdentityRe.MatchString(reporter) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidReporterIdentity, reporter)
	}

	reportTime := r.now().UTC().Format(timeLayout) + " UTC"
	emailDate := rec.Date.UTC().Format(timeLayout) + " UTC"

	plain = renderPlain(rec, kind, reporter, reportTime, emailDate)
	html = renderHTML(rec, kind, reporter, reportTime, emailDate)
	return plain, html, nil
}

func renderPlain(rec *email.Record, kind email.ReportKind, reporter, reportTime, emailDate string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", kind.Title())
	fmt.Fprintf(&b, "Reported: %s\n", reportTime)
	fmt.Fprintf(&b, "Reporter: %s\n", reporter)
	b.WriteString("\nSUSPICIOUS EMAIL DETAILS:\n")
	fmt.Fprintf(&b, "• From: %s\n", rec.From)
	fmt.Fprintf(&b, "• To: %s\n", rec.To)
	if rec.ReplyTo != "" {
		fmt.Fprintf(&b, "• Reply-To: %s\n", rec.ReplyTo)
	}
	fmt.Fprintf(&b, "• Subject: %s\n", rec.Subject)
	fmt.Fprintf(&b, "• Date: %s\n", emailDate)
	if rec.MessageID != "" {
		fmt.Fprintf(&b, "• Message-ID: %s\n", rec.MessageID)
	}
	if rec.UserAgent != "" {
		fmt.Fprintf(&b, "• User-Agent: %s\n", rec.UserAgent)
	}
	fmt.Fprintf(&b, "• Attachments: %s\n", attachmentList(rec, false))
	b.WriteString("\nOriginal email attached as .eml file with full headers preserved.")
	if kind == email.KindInvestigation {
		b.WriteString("\n\n⚠️ " + actionRequired + "\n")
	}

	return b.String()
}

func renderHTML(rec *email.Record, kind email.ReportKind, reporter, reportTime, emailDate string) string {
	headingColor := "#d93025"
	if kind == email.KindInvestigation {
		headingColor = "#fbbc04"
	}

	var b strings.Builder

	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px;">` + "\n")
	fmt.Fprintf(&b, `  <h2 style="color: %s;">%s</h2>`+"\n", headingColor, kind.Title())

	b.WriteString(`  <div style="background: #f5f5f5; padding: 10px; margin: 10px 0;">` + "\n")
	fmt.Fprintf(&b, "    <strong>Reported:</strong> %s<br>\n", EscapeHTML(reportTime))
	fmt.Fprintf(&b, "    <strong>Reporter:</strong> %s\n", EscapeHTML(reporter))
	b.WriteString("  </div>\n")

	if kind == email.KindInvestigation {
		b.WriteString(`  <div style="background: #fff3cd; border: 1px solid #ffeaa7; padding: 12px; margin: 20px 0; border-left: 4px solid #fbbc04;">` + "\n")
		fmt.Fprintf(&b, "    <strong>⚠️ %s</strong>\n", actionRequired)
		b.WriteString("  </div>\n")
	}

	b.WriteString("  <h3>Suspicious Email Details</h3>\n")
	b.WriteString(`  <table style="border-collapse: collapse; width: 100%;">` + "\n")

	// Alternate row shading across the optional rows.
	shade := rowShader()
	writeRow(&b, shade(), "From", EscapeHTML(rec.From), "")
	writeRow(&b, shade(), "To", EscapeHTML(rec.To), "")
	if rec.ReplyTo != "" {
		// A Reply-To diverging from the sender is the classic phishing tell.
		writeRow(&b, shade(), "Reply-To", "<strong>"+EscapeHTML(rec.ReplyTo)+"</strong>", "color: #d93025;")
	}
	writeRow(&b, shade(), "Subject", EscapeHTML(rec.Subject), "")
	writeRow(&b, shade(), "Date", EscapeHTML(emailDate), "")
	if rec.MessageID != "" {
		writeRow(&b, shade(), "Message-ID", EscapeHTML(rec.MessageID), "font-family: monospace; font-size: 12px;")
	}
	if rec.UserAgent != "" {
		writeRow(&b, shade(), "User-Agent", EscapeHTML(rec.UserAgent), "")
	}
	writeRow(&b, shade(), "Attachments", attachmentList(rec, true), "")
	b.WriteString("  </table>\n")

	b.WriteString(`  <p style="margin-top: 20px; padding: 10px; background: #e8f5e9; border-left: 4px solid #34a853;">` + "\n")
	b.WriteString("    <strong>Attachment:</strong> Original email (.eml) with full headers preserved.\n")
	b.WriteString("  </p>\n")
	b.WriteString("</div>\n")

	return b.String()
}

// rowShader returns a closure yielding the style attribute for every other
// table row, starting shaded.
func rowShader() func() string {
	shaded := true
	return func() string {
		s := ""
		if shaded {
			s = ` style="background: #f5f5f5;"`
		}
		shaded = !shaded
		return s
	}
}

// writeRow writes one detail table row. The value must already be escaped;
// extraStyle is appended to the value cell's inline style.
func writeRow(b *strings.Builder, rowStyle, label, escapedValue, extraStyle string) {
	fmt.Fprintf(b, "    <tr%s>\n", rowStyle)
	fmt.Fprintf(b, `      <td style="padding: 8px; border: 1px solid #ddd;"><strong>%s:</strong></td>`+"\n", label)
	fmt.Fprintf(b, `      <td style="padding: 8px; border: 1px solid #ddd;%s">%s</td>`+"\n", styleSuffix(extraStyle), escapedValue)
	b.WriteString("    </tr>\n")
}

func styleSuffix(extra string) string {
	if extra == "" {
		return ""
	}
	return " " + extra
}

// attachmentList joins attachment names with ", ", or returns "None". When
// escaped is true each name passes through EscapeHTML.
func attachmentList(rec *email.Record, escaped bool) string {
	if len(rec.Attachments) == 0 {
		return "None"
	}
	names := make([]string, 0, len(rec.Attachments))
	for _, att := range rec.Attachments {
		if escaped {
			names = append(names, EscapeHTML(att.Name))
		} else {
			names = append(names, att.Name)
		}
	}
	return strings.Join(names, ", ")
}
