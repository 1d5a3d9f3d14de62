// Package sanitize normalizes header fields extracted from untrusted
// messages. All functions are pure and total: they never fail and always
// return a non-empty string.
package sanitize

import (
	"regexp"
	"strings"
)

// Sentinel values used when a field is absent or cleans down to nothing.
const (
	NoSubject        = "No Subject"
	UnknownSender    = "Unknown Sender"
	UnknownRecipient = "Unknown Recipient"
)

var (
	// encodedWordRe matches MIME encoded-word tokens (=?charset?B|Q?text?=).
	encodedWordRe = regexp.MustCompile(`=\?[^?]+\?[BbQq]\?[^?]*\?=`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	angleAddrRe   = regexp.MustCompile(`<([^>]+@[^>]+)>`)
)

// CleanSubject strips MIME encoded-word sequences from a subject line,
// collapses whitespace runs and trims. Each encoded word is replaced with a
// single space rather than decoded; the report only needs a readable label,
// and decoding attacker-controlled charsets buys nothing here.
func CleanSubject(subject string) string {
	s := encodedWordRe.ReplaceAllString(subject, " ")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return NoSubject
	}
	return s
}

// CleanAddress extracts the bare address from a "Display Name <user@host>"
// header value. Input without an angle-bracket address is returned trimmed
// and unchanged. The fallback sentinel is caller-supplied because From and
// To use different labels.
func CleanAddress(value, fallback string) string {
	if m := angleAddrRe.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
