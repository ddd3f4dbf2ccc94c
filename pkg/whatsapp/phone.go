package whatsapp

import (
	"strings"
)

// BrazilCountryCode is prepended to short numbers entered without a DDI.
const BrazilCountryCode = "55"

const (
	phoneMinDigits = 10
	phoneMaxDigits = 13
)

func cleanDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone strips punctuation and formats a user-entered phone number
// into the digit string WhatsApp links expect. Numbers up to 12 digits that do
// not already carry the "55" prefix are assumed to be Brazilian DDD+number and
// get it prepended; anything longer is taken as a full international number.
// The transform is pure and idempotent; the stored contact is never mutated.
func NormalizePhone(raw string) string {
	digits := cleanDigits(raw)
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, BrazilCountryCode) && len(digits) <= 12 {
		return BrazilCountryCode + digits
	}
	return digits
}

// IsValidPhone reports whether the cleaned digit count falls in the accepted
// range. This is a coarse length heuristic, not a dialing-plan check.
func IsValidPhone(raw string) bool {
	n := len(cleanDigits(raw))
	return n >= phoneMinDigits && n <= phoneMaxDigits
}
