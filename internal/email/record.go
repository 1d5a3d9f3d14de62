// Package email defines the core data model for a reported message and the
// report payload built from it.
package email

import "time"

// ReportKind classifies a submission: a phishing report is for awareness
// only, an investigation request expects a response from the security team.
type ReportKind string

const (
	KindPhishing      ReportKind = "phishing"
	KindInvestigation ReportKind = "investigation"
)

// Valid reports whether k is a known report kind.
func (k ReportKind) Valid() bool {
	return k == KindPhishing || k == KindInvestigation
}

// Title returns the heading used at the top of rendered report bodies.
func (k ReportKind) Title() string {
	if k == KindInvestigation {
		return "INVESTIGATION REQUEST"
	}
	return "PHISHING REPORT"
}

// Record holds the extracted metadata of a single reported message. It is
// built once per submission, consumed synchronously by the renderer, and
// discarded; Raw is never mutated after construction.
//
// Subject, From and To are always post-sanitizer values and never empty.
// ReplyTo, MessageID and UserAgent are empty when the corresponding header
// could not be discovered; the fallback retrieval tier never supplies them.
type Record struct {
	Raw         string
	Subject     string
	From        string
	To          string
	ReplyTo     string
	Date        time.Time
	MessageID   string
	UserAgent   string
	Attachments []Attachment
}

// Attachment describes a declared attachment or inline part, in order of
// appearance in the raw message. Name is never empty.
type Attachment struct {
	Name string
	Type string
	// Size is only known on the fallback retrieval tier; zero otherwise.
	Size int64
}

// Report is the finished delivery payload handed to a delivery channel.
type Report struct {
	Recipient string
	Subject   string
	PlainBody string
	HTMLBody  string
	Artifact  Artifact
}

// Artifact is the original message preserved verbatim for the analyst.
type Artifact struct {
	Filename    string
	ContentType string
	Content     []byte
}
