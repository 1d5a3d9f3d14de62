package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// genericContentType is assigned to every attachment found by the pattern
// scan; content-type classification is out of scope on this tier.
const genericContentType = "application/octet-stream"

// rfc2231Marker introduces a percent-encoded UTF-8 filename parameter value.
const rfc2231Marker = "UTF-8''"

var (
	headerBlockSep = regexp.MustCompile(`\r?\n\r?\n`)

	subjectRe   = regexp.MustCompile(`(?im)^Subject:[ \t]*(.*)$`)
	fromRe      = regexp.MustCompile(`(?im)^From:[ \t]*(.*)$`)
	toRe        = regexp.MustCompile(`(?im)^To:[ \t]*(.*)$`)
	replyToRe   = regexp.MustCompile(`(?im)^Reply-To:[ \t]*(.*)$`)
	dateRe      = regexp.MustCompile(`(?im)^Date:[ \t]*(.*)$`)
	messageIDRe = regexp.MustCompile(`(?im)^Message-ID:[ \t]*(.*)$`)
	userAgentRe = regexp.MustCompile(`(?im)^User-Agent:[ \t]*(.*)$`)
	xMailerRe   = regexp.MustCompile(`(?im)^X-Mailer:[ \t]*(.*)$`)

	attachmentRe = regexp.MustCompile(
		`(?i)Content-Disposition:\s*(attachment|inline)[^;]*;\s*filename\*?=([^;\r\n]+)`)

	quoteStripper = strings.NewReplacer(`"`, "", `'`, "")
)

// Regex implements Extractor with pattern matching over the raw text. The
// patterns target common real-world message shapes and tolerate both line
// ending conventions; malformed or headerless input yields absent values,
// never an error.
type Regex struct{}

// Headers extracts the first case-insensitive match of each known header
// from the header block, the text preceding the first blank line. For the
// user agent, User-Agent is preferred over X-Mailer.
func (Regex) Headers(raw string) Headers {
	block := raw
	if loc := headerBlockSep.FindStringIndex(raw); loc != nil {
		block = raw[:loc[0]]
	}

	h := Headers{
		Subject:   firstMatch(subjectRe, block),
		From:      firstMatch(fromRe, block),
		To:        firstMatch(toRe, block),
		ReplyTo:   firstMatch(replyToRe, block),
		Date:      firstMatch(dateRe, block),
		MessageID: firstMatch(messageIDRe, block),
		UserAgent: firstMatch(userAgentRe, block),
	}
	if h.UserAgent == "" {
		h.UserAgent = firstMatch(xMailerRe, block)
	}
	return h
}

// Attachments scans the entire raw message for Content-Disposition
// declarations of type attachment or inline that carry a filename or
// filename* parameter. Duplicate filenames are preserved as separate
// entries; each corresponds to a distinct declared part.
func (Regex) Attachments(raw string) []Attachment {
	var out []Attachment
	for _, m := range attachmentRe.FindAllStringSubmatch(raw, -1) {
		name := strings.TrimSpace(m[2])

		// The marker's own apostrophes must survive until this check, so
		// quote stripping waits until the value is known to be plain.
		if i := strings.Index(name, rfc2231Marker); i >= 0 {
			encoded := quoteStripper.Replace(name[i+len(rfc2231Marker):])
			if decoded, err := url.PathUnescape(encoded); err == nil {
				name = decoded
			} else {
				name = encoded
			}
		} else {
			name = quoteStripper.Replace(name)
		}

		if name == "" {
			continue
		}
		out = append(out, Attachment{Name: name, Type: genericContentType})
	}
	return out
}

func firstMatch(re *regexp.Regexp, block string) string {
	if m := re.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
