package report

import "strings"

// htmlEscaper covers the five characters html.EscapeString handles plus "/",
// so escaped values are safe in attribute positions too. Single pass, so
// already-produced entities are not re-seen within one call.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#x2F;",
)

// EscapeHTML replaces markup-significant characters with their entity
// equivalents. Empty input is returned unchanged. Calling it twice
// double-escapes; callers escape exactly once, at interpolation.
func EscapeHTML(s string) string {
	if s == "" {
		return s
	}
	return htmlEscaper.Replace(s)
}
