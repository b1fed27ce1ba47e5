package utils

import "strings"

const (
	phoneDigits        = 10
	countryCallingCode = "886"
)

// NormalizePhone keeps the digits of a phone number, drops a leading
// country calling code and returns at most the last ten digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneDigits && strings.HasPrefix(digits, countryCallingCode) {
		digits = strings.TrimPrefix(digits, countryCallingCode)
	}
	if len(digits) > phoneDigits {
		digits = digits[len(digits)-phoneDigits:]
	}
	return digits
}
