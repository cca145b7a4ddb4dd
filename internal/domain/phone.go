package domain

import "strings"

const (
	// CountryCode is the Botswana dialling code.
	CountryCode = "267"
	// InternationalPrefix is dialled before a country code from abroad.
	InternationalPrefix = "00"
	// SubscriberDigits is the length of a national subscriber number.
	SubscriberDigits = 8
)

// NormalizePhone converts free-form input into "+267XXXXXXXX".
//
// Every non-digit is dropped first, then the digits are matched against:
//   - "00267" + 8 digits
//   - "267" + 8 digits
//   - "0" + 8 digits (exactly 9 digits)
//   - 8 digits
//
// Anything else is rejected with ok == false.
func NormalizePhone(raw string) (canonical string, ok bool) {
	digits := digitsOnly(raw)

	switch {
	case strings.HasPrefix(digits, InternationalPrefix+CountryCode):
		return subscriber(strings.TrimPrefix(digits, InternationalPrefix+CountryCode))
	case strings.HasPrefix(digits, CountryCode):
		return subscriber(strings.TrimPrefix(digits, CountryCode))
	case strings.HasPrefix(digits, "0") && len(digits) == SubscriberDigits+1:
		return subscriber(digits[1:])
	case len(digits) == SubscriberDigits:
		return subscriber(digits)
	default:
		return "", false
	}
}

// IsValidPhone reports whether raw normalizes.
func IsValidPhone(raw string) bool {
	_, ok := NormalizePhone(raw)
	return ok
}

func subscriber(rest string) (string, bool) {
	if len(rest) != SubscriberDigits {
		return "", false
	}
	return "+" + CountryCode + rest, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
