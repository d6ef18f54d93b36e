package privacy

// RedactionToken is the fixed literal substituted wherever no partial-mask
// rule applies. It is part of the output contract and used verbatim.
const RedactionToken = "[REDACTED]"

// Source identifies which path of the engine produced an outcome.
type Source string

const (
	// SourceStructured means the payload decoded on the first attempt.
	SourceStructured Source = "structured"
	// SourceRepaired means the payload decoded only after syntax repair.
	SourceRepaired Source = "repaired"
	// SourceRaw means the payload never decoded and was scanned as raw text.
	SourceRaw Source = "raw"
	// SourceNone means the payload was empty or scanning was disabled.
	SourceNone Source = "none"
	// SourceError means the record failed unexpectedly and was emitted with
	// the safe non-PII default.
	SourceError Source = "error"
)

// Outcome is the result of scanning a single record's payload.
type Outcome struct {
	RecordID     string            `json:"record_id"`
	Redacted     string            `json:"redacted_data_json"`
	IsPII        bool              `json:"is_pii"`
	Source       Source            `json:"source"`
	MaskedFields map[string]string `json:"masked_fields,omitempty"`
}
