// Package phone normalizes phone numbers to the national 10-digit form
// used as the uniqueness key for registration and login.
package phone

import "strings"

// Normalize strips every non-digit character and keeps the last 10 digits,
// so numbers entered with a country code or punctuation still collide with
// their bare national form. Example: "+57 310-123-4567" -> "3101234567".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}
