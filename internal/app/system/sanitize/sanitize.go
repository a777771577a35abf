// internal/app/system/sanitize/sanitize.go
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Messages and circle metadata are plain text: markup is stripped, not
// escaped, so stored content renders safely anywhere.
var strict = bluemonday.StrictPolicy()

// Text strips all HTML from user-supplied text and trims whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Truncate shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
