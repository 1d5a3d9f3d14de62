// Package source defines the mailbox retrieval interfaces behind the
// two-tier extraction strategy.
package source

import (
	"context"
	"time"
)

// Raw retrieves the full RFC 822 bytes of a message. This is the primary
// retrieval tier; rich metadata extraction runs over the returned bytes.
type Raw interface {
	Raw(ctx context.Context, id string) ([]byte, error)
}

// AttachmentSummary describes one attachment as reported by the fallback
// tier, which knows the precise content type and size.
type AttachmentSummary struct {
	Name string
	Type string
	Size int64
}

// MessageSummary is the degraded view offered by the fallback tier. It
// never carries Reply-To, Message-ID or User-Agent: recovering those would
// mean re-parsing raw content, which is deliberately not duplicated here.
type MessageSummary struct {
	Raw         []byte
	Subject     string
	From        string
	To          string
	Date        time.Time
	Attachments []AttachmentSummary
}

// Summary retrieves the degraded view of a message. Fallback retrieval
// tier, consulted once when the primary tier fails.
type Summary interface {
	Summary(ctx context.Context, id string) (*MessageSummary, error)
}
