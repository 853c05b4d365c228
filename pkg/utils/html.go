package utils

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
	"/", "&#x2F;",
)

// EscapeHTML escapes user text before it is placed in an email body.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
