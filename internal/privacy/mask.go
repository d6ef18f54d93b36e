package privacy

import (
	"strings"
)

// MaskValue produces a partially informative replacement for a detected
// value. The field name picks the policy when it uniquely identifies the PII
// type; otherwise the type is inferred from which pattern matches. Anything
// without a partial-mask rule becomes the generic redaction token.
func (d *Detector) MaskValue(field, value string) string {
	v := strings.TrimSpace(value)

	if field == "phone" || phonePattern.MatchStart(v) {
		return maskKeepEnds(v)
	}

	if field == "aadhar" {
		digits := stripNonDigits(v)
		if len(digits) == 12 {
			return digits[:2] + "XXXXXXXX" + digits[10:]
		}
		return RedactionToken
	}

	if nameFields[field] {
		return maskNameTokens(v)
	}

	if field == "email" {
		return maskEmail(v)
	}

	return RedactionToken
}

// maskKeepEnds keeps the first two and last two characters and fills the
// interior with X. Values shorter than four characters carry too little to
// bracket, so they are replaced entirely.
func maskKeepEnds(v string) string {
	r := []rune(v)
	n := len(r)
	if n < 4 {
		return strings.Repeat("X", n)
	}
	if n == 10 {
		return string(r[:2]) + "XXXXXX" + string(r[8:])
	}
	return string(r[:2]) + strings.Repeat("X", n-4) + string(r[n-2:])
}

// maskNameTokens masks each whitespace-separated token, keeping only its
// first character. Single-character tokens become a lone X.
func maskNameTokens(v string) string {
	words := strings.Fields(v)
	masked := make([]string, len(words))
	for i, word := range words {
		r := []rune(word)
		if len(r) > 1 {
			masked[i] = string(r[0]) + strings.Repeat("X", len(r)-1)
		} else {
			masked[i] = "X"
		}
	}
	return strings.Join(masked, " ")
}

// maskEmail masks the local part of an address and keeps the domain intact.
// Values without an @ get the generic redaction token.
func maskEmail(v string) string {
	at := strings.Index(v, "@")
	if at < 0 {
		return RedactionToken
	}

	local := []rune(v[:at])
	domain := v[at+1:]
	if len(local) <= 1 {
		return "X@" + domain
	}
	return string(local[0]) + strings.Repeat("X", len(local)-1) + "@" + domain
}

// stripNonDigits removes every non-digit character.
func stripNonDigits(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
