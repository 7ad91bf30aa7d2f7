package domain

import "strings"

// minPhoneDigits is country code + DDD + subscriber number.
const minPhoneDigits = 12

// NormalizePhone canonicalizes an arbitrary phone string into the digit-only
// international form used everywhere in the system: every non-digit stripped,
// leading zeros removed, and the country code prepended when the number lacks
// an international prefix. Inputs that still come out shorter than twelve
// digits are rejected.
func NormalizePhone(raw, countryCode string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")

	if !strings.HasPrefix(digits, countryCode) && len(digits) <= 11 {
		digits = countryCode + digits
	}
	if len(digits) < minPhoneDigits {
		return "", &NormalizationError{Input: raw}
	}
	return digits, nil
}
