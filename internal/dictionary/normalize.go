package dictionary

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize uppercases s with full Unicode case mapping ("ß" becomes "SS"), collapses
// every run of characters outside [A-Z0-9] into a single space and trims the result.
// It is total and idempotent.
func Normalize(s string) string {
	// a Caser keeps state, so each call gets its own
	upper := cases.Upper(language.Und).String(s)
	var b strings.Builder
	b.Grow(len(upper))
	pendingSpace := false
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}
