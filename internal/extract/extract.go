// Package extract recovers structured metadata from raw message bytes.
//
// Extraction sits behind the Extractor interface so the strategy can be
// hardened or swapped without touching callers: the default implementation
// matches patterns over the raw text the way most real-world messages are
// shaped, and a structured MIME implementation is available as an
// alternative.
package extract

// Headers holds the raw header values pulled from a message's header block.
// An empty string means the header was absent; absence is the only failure
// signal at this layer.
type Headers struct {
	Subject   string
	From      string
	To        string
	ReplyTo   string
	Date      string
	MessageID string
	UserAgent string
}

// Attachment is a declared attachment or inline part discovered in the raw
// message. Name is decoded and quote-stripped, never empty.
type Attachment struct {
	Name string
	Type string
}

// Extractor pulls headers and attachment declarations out of raw message
// text. Implementations never fail on malformed input; a header that cannot
// be found is simply absent.
type Extractor interface {
	Headers(raw string) Headers
	Attachments(raw string) []Attachment
}
