package contact

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeEmail canonicalizes an email address for comparison: trimmed and
// lower-cased. Returns empty on input that is not shaped like an address.
// No deliverability checks are performed.
func NormalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return email
}

// NormalizePhone canonicalizes a phone number to E.164 ("+" followed by up to
// 15 digits). Numbers without a country code are assumed to be in
// defaultCountryCode. Returns empty on unparseable input, never errors.
func NormalizePhone(raw, defaultCountryCode string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	international := strings.HasPrefix(s, "+")
	digits := nonDigits.ReplaceAllString(s, "")

	// "00" is the common dialing prefix for an explicit country code
	if !international && strings.HasPrefix(digits, "00") {
		international = true
		digits = digits[2:]
	}

	if !international {
		digits = strings.TrimLeft(digits, "0")
		digits = nonDigits.ReplaceAllString(defaultCountryCode, "") + digits
	}

	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}
	return "+" + digits
}
