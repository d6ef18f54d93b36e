package privacy

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dhanjo/project-guardian-2.0/internal/config"
)

// Detector applies the PII rule vocabulary to decoded records and raw
// payloads. It holds no per-record state and is safe for concurrent use.
type Detector struct {
	logger *zap.Logger
	config config.PrivacyConfig
}

// New creates a new PII detector instance.
func New(cfg config.PrivacyConfig, log *zap.Logger) *Detector {
	return &Detector{
		logger: log,
		config: cfg,
	}
}

var nameTokenPattern = regexp.MustCompile(`^[A-Za-z.]+$`)

// IsStandalonePII decides whether a single field's value alone constitutes
// PII. The field name is authoritative when it names a PII type directly;
// otherwise the trimmed value is tested against each recognizer anchored at
// the start.
func (d *Detector) IsStandalonePII(field, value string) bool {
	v := strings.TrimSpace(value)
	if len(v) < 3 {
		return false
	}

	if field == "phone" || phonePattern.MatchStart(v) {
		return true
	}
	if field == "aadhar" || aadharPattern.MatchStart(v) {
		return true
	}
	if field == "passport" || passportPattern.MatchStart(v) {
		return true
	}
	if field == "upi_id" || upiPattern.MatchStart(v) {
		return true
	}

	return false
}

// IsValidName decides whether a value is a plausible person name: at least
// two whitespace-separated tokens, each made of ASCII letters and periods.
func (d *Detector) IsValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return false
	}

	words := strings.Fields(trimmed)
	if len(words) < 2 {
		return false
	}

	for _, word := range words {
		if !nameTokenPattern.MatchString(word) {
			return false
		}
	}

	return true
}

// IsValidEmail reports whether the value starts with an email address.
func (d *Detector) IsValidEmail(email string) bool {
	return emailPattern.MatchStart(email)
}

// IsValidAddress decides whether a value plausibly encodes a physical
// address: long enough, comma-separated segments, and either a digit (street
// or unit number) or at least four descriptive tokens.
func (d *Detector) IsValidAddress(addr string) bool {
	trimmed := strings.TrimSpace(addr)
	if len(trimmed) < 10 {
		return false
	}
	if !strings.Contains(trimmed, ",") {
		return false
	}
	return strings.ContainsAny(trimmed, "0123456789") || len(strings.Fields(trimmed)) >= 4
}

// HasCombinatorialPII decides whether two or more distinct PII signal
// categories are jointly present in the record, even if no field alone is
// standalone PII. Each category counts at most once regardless of how many
// fields qualify for it.
func (d *Detector) HasCombinatorialPII(data map[string]interface{}) bool {
	present := make(map[string]bool)

	for _, field := range sortedFields(data) {
		value := valueText(data[field])
		if value == "" {
			continue
		}

		switch {
		case field == "name" && d.IsValidName(value):
			present[categoryName] = true
		case (field == "first_name" || field == "last_name") && len(strings.TrimSpace(value)) >= 2:
			present[categoryNameParts] = true
		case field == "email" && d.IsValidEmail(value):
			present[categoryEmail] = true
		case field == "address" && d.IsValidAddress(value):
			present[categoryAddress] = true
		case (field == "device_id" || field == "ip_address") && len(strings.TrimSpace(value)) >= 5:
			present[categoryDeviceInfo] = true
		}
	}

	return len(present) >= 2
}

// InspectRecord runs both detection passes over a decoded record and merges
// their findings. The returned map holds a masked replacement for every field
// judged to carry PII; a field masked by the standalone pass is never
// overwritten by the combinatorial pass.
func (d *Detector) InspectRecord(data map[string]interface{}) (bool, map[string]string) {
	hasStandalone := false
	hasCombinatorial := false
	masked := make(map[string]string)

	for _, field := range sortedFields(data) {
		value := valueText(data[field])
		if d.IsStandalonePII(field, value) {
			hasStandalone = true
			masked[field] = d.MaskValue(field, value)
		}
	}

	if d.HasCombinatorialPII(data) {
		hasCombinatorial = true
		for _, field := range sortedFields(data) {
			value := valueText(data[field])
			if !combinatorialFields[field] || value == "" {
				continue
			}
			// First pass wins: an explicit presence check, not an
			// insertion-order accident.
			if _, already := masked[field]; already {
				continue
			}

			switch {
			case field == "name" && d.IsValidName(value):
				masked[field] = d.MaskValue(field, value)
			case (field == "first_name" || field == "last_name") && len(strings.TrimSpace(value)) >= 2:
				masked[field] = d.MaskValue(field, value)
			case field == "email" && d.IsValidEmail(value):
				masked[field] = d.MaskValue(field, value)
			case field == "address" && d.IsValidAddress(value):
				masked[field] = d.MaskValue(field, value)
			case field == "device_id" || field == "ip_address":
				masked[field] = d.MaskValue(field, value)
			}
		}
	}

	return hasStandalone || hasCombinatorial, masked
}

// ScanPayload runs the full per-record flow: decode, detect, redact, with
// syntax repair and the raw-text fallback on decode failure. Any unexpected
// failure is isolated to this record and yields the safe non-PII default.
func (d *Detector) ScanPayload(recordID, payload string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("record scan failed, emitting safe non-PII default; possible false negative",
				zap.String("record_id", recordID),
				zap.Any("panic", r))
			out = Outcome{RecordID: recordID, Redacted: "{}", IsPII: false, Source: SourceError}
		}
	}()

	if !d.config.Enabled {
		return Outcome{RecordID: recordID, Redacted: payload, IsPII: false, Source: SourceNone}
	}

	if strings.TrimSpace(payload) == "" {
		return Outcome{RecordID: recordID, Redacted: "{}", IsPII: false, Source: SourceNone}
	}

	source := SourceStructured
	data, err := decodeRecord(payload)
	if err != nil {
		data, err = decodeRecord(RepairPayload(payload))
		if err != nil {
			// Undecodable even after repair: scan the raw text.
			if d.DetectRawPII(payload) {
				redacted := d.RedactRawText(payload)
				if d.config.LogFindings {
					d.logger.Debug("PII redacted in raw payload",
						zap.String("record_id", recordID))
				}
				return Outcome{RecordID: recordID, Redacted: redacted, IsPII: true, Source: SourceRaw}
			}
			return Outcome{RecordID: recordID, Redacted: payload, IsPII: false, Source: SourceRaw}
		}
		source = SourceRepaired
	}

	hasPII, maskedFields := d.InspectRecord(data)
	if !hasPII {
		return Outcome{RecordID: recordID, Redacted: payload, IsPII: false, Source: source}
	}

	redacted := make(map[string]interface{}, len(data))
	for k, v := range data {
		redacted[k] = v
	}
	for field, mask := range maskedFields {
		if _, ok := redacted[field]; ok {
			redacted[field] = mask
		}
	}

	buf, err := json.Marshal(redacted)
	if err != nil {
		d.logger.Warn("failed to re-serialize redacted record, emitting safe non-PII default",
			zap.String("record_id", recordID),
			zap.Error(err))
		return Outcome{RecordID: recordID, Redacted: "{}", IsPII: false, Source: SourceError}
	}

	if d.config.LogFindings {
		d.logger.Debug("PII masked in record",
			zap.String("record_id", recordID),
			zap.Int("masked_fields", len(maskedFields)),
			zap.String("source", string(source)))
	}

	return Outcome{
		RecordID:     recordID,
		Redacted:     string(buf),
		IsPII:        true,
		Source:       source,
		MaskedFields: maskedFields,
	}
}

// decodeRecord strictly decodes a JSON-object payload. Numbers are kept as
// json.Number so their text form round-trips byte-identically.
func decodeRecord(payload string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return data, nil
}

// valueText converts a decoded scalar to the text form every rule operates
// on. Missing and null values become the empty string.
func valueText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		buf, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(buf)
	}
}

// sortedFields returns the record's field names in sorted order so detection
// is deterministic across runs. The detection outcome does not depend on
// iteration order; only log output would.
func sortedFields(data map[string]interface{}) []string {
	fields := make([]string, 0, len(data))
	for field := range data {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
