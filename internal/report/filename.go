package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// maxSlugLen bounds the subject-derived portion of the artifact filename.
const maxSlugLen = 30

var (
	slugDisallowedRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRunRe  = regexp.MustCompile(`\s+`)
)

// ArtifactFilename derives the filesystem-safe name of the preserved .eml
// artifact from a cleaned subject and the message date. The timestamp is
// always rendered in UTC so the same message yields the same filename in
// every timezone.
func ArtifactFilename(subject string, date time.Time) string {
	slug := slugDisallowedRe.ReplaceAllString(subject, "")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	slug = whitespaceRunRe.ReplaceAllString(strings.TrimSpace(slug), "_")

	timestamp := date.UTC().Format("2006-01-02_15-04-05")
	return fmt.Sprintf("phishing_report_%s_%s.eml", timestamp, slug)
}
