package privacy

import (
	"regexp"
	"strings"
)

// Repair heuristics for payloads that fail strict JSON decoding. These target
// two known malformations from upstream export jobs: unquoted bare-word
// tokens and unquoted YYYY-MM-DD dates. The caller retries decoding exactly
// once; anything else falls through to the raw-text fallback.
var (
	bareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	bareWordValue = regexp.MustCompile(`:\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*([,}])`)
	bareDateValue = regexp.MustCompile(`:\s*(\d{4}-\d{2}-\d{2})\s*([,}])`)
)

// RepairPayload attempts to coerce a malformed JSON-object payload into a
// decodable form without understanding its content. It trims surrounding
// whitespace, strips one trailing stray quote (a known truncation artifact),
// and quotes bare keys, bare-word values, and bare date values.
func RepairPayload(payload string) string {
	fixed := strings.TrimSpace(payload)
	fixed = strings.TrimSuffix(fixed, `"`)
	fixed = bareKey.ReplaceAllString(fixed, `${1}"${2}":`)
	fixed = bareWordValue.ReplaceAllString(fixed, `: "${1}"${2}`)
	fixed = bareDateValue.ReplaceAllString(fixed, `: "${1}"${2}`)
	return fixed
}
