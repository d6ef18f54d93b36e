package privacy

import "strings"

// DetectRawPII reports whether any recognizer matches anywhere in an
// undecodable payload. Without field names only the pattern library can
// judge the text.
func (d *Detector) DetectRawPII(raw string) bool {
	for _, pattern := range allPatterns {
		if pattern.Search(raw) {
			return true
		}
	}
	return false
}

// RedactRawText redacts PII from an undecodable payload in place, applying
// each recognizer in a fixed order. Phone and aadhar matches keep their
// partial masks; passport, UPI, and email matches become the generic token.
func (d *Detector) RedactRawText(raw string) string {
	redacted := raw

	for _, match := range phonePattern.FindAll(raw) {
		redacted = strings.ReplaceAll(redacted, match, maskKeepEnds(match))
	}

	// Aadhar matches are masked only when exactly 12 digits survive
	// separator stripping; other digit counts pass through unredacted.
	// Known gap, kept as documented behavior.
	for _, match := range aadharPattern.FindAll(raw) {
		digits := stripNonDigits(match)
		if len(digits) == 12 {
			masked := digits[:2] + "XXXXXXXX" + digits[10:]
			redacted = strings.ReplaceAll(redacted, match, masked)
		}
	}

	redacted = passportPattern.ReplaceAll(redacted, RedactionToken)
	redacted = upiPattern.ReplaceAll(redacted, RedactionToken)
	redacted = emailPattern.ReplaceAll(redacted, RedactionToken)

	return redacted
}
