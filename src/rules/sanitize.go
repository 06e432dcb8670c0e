package rules

import (
	"strings"
	"unicode"
)

// Sanitize strips digits, trims and lower-cases a transaction name so that
// "Check Paid #20143" and "Check Paid #19243" share a rule key.
func Sanitize(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, name)
	return strings.ToLower(strings.TrimSpace(stripped))
}
