package privacy

import "regexp"

// Recognizer is a named, stateless text-matching rule. Each recognizer keeps
// two compiled forms of the same expression: one anchored at the start of a
// value (used when a decoded field is checked on its own) and one unanchored
// (used when scanning raw, undecodable payloads). Recognizers are compiled
// once at package init and are safe for concurrent use.
type Recognizer struct {
	Name     string
	anchored *regexp.Regexp
	scan     *regexp.Regexp
}

func newRecognizer(name, expr string) Recognizer {
	return Recognizer{
		Name:     name,
		anchored: regexp.MustCompile(`^(?:` + expr + `)`),
		scan:     regexp.MustCompile(expr),
	}
}

// MatchStart reports whether the pattern matches at the beginning of s. The
// pattern is not required to consume all of s.
func (r Recognizer) MatchStart(s string) bool {
	return r.anchored.MatchString(s)
}

// Search reports whether the pattern occurs anywhere in s.
func (r Recognizer) Search(s string) bool {
	return r.scan.MatchString(s)
}

// FindAll returns every match of the pattern in s.
func (r Recognizer) FindAll(s string) []string {
	return r.scan.FindAllString(s, -1)
}

// ReplaceAll replaces every match of the pattern in s with repl, treating
// repl as a literal string.
func (r Recognizer) ReplaceAll(s, repl string) string {
	return r.scan.ReplaceAllLiteralString(s, repl)
}

// The fixed pattern library. Phone numbers are Indian-style 10-digit numbers,
// aadhar is the 12-digit national identifier (optionally grouped 4-4-4), and
// UPI handles are payment addresses of the form token@provider.
var (
	phonePattern    = newRecognizer("phone", `\b\d{10}\b`)
	aadharPattern   = newRecognizer("aadhar", `\b\d{4}[\s-]?\d{4}[\s-]?\d{4}\b|\b\d{12}\b`)
	passportPattern = newRecognizer("passport", `\b[A-Z]\d{7}\b`)
	upiPattern      = newRecognizer("upi", `\b[\w.]+@[\w.]+\b|\b\d{10}@[a-zA-Z]+\b`)
	emailPattern    = newRecognizer("email", `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// allPatterns lists every recognizer in the order the raw-text fallback
// applies them.
var allPatterns = []Recognizer{
	phonePattern,
	aadharPattern,
	passportPattern,
	upiPattern,
	emailPattern,
}
