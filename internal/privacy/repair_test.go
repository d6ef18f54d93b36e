package privacy

import (
	"encoding/json"
	"testing"
)

func TestRepairPayload(t *testing.T) {
	t.Run("bare keys and bare word values", func(t *testing.T) {
		repaired := RepairPayload(`{name: John, city: Delhi}`)

		var data map[string]interface{}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			t.Fatalf("repaired payload still invalid: %q: %v", repaired, err)
		}
		if data["name"] != "John" {
			t.Errorf("name = %v", data["name"])
		}
		if data["city"] != "Delhi" {
			t.Errorf("city = %v", data["city"])
		}
	})

	t.Run("bare date value", func(t *testing.T) {
		repaired := RepairPayload(`{"joined": 2024-01-05}`)

		var data map[string]interface{}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			t.Fatalf("repaired payload still invalid: %q: %v", repaired, err)
		}
		if data["joined"] != "2024-01-05" {
			t.Errorf("joined = %v", data["joined"])
		}
	})

	t.Run("one trailing stray quote", func(t *testing.T) {
		repaired := RepairPayload(`{"a": "b"}"`)

		var data map[string]interface{}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			t.Fatalf("repaired payload still invalid: %q: %v", repaired, err)
		}
	})

	t.Run("quoted strings are untouched", func(t *testing.T) {
		payload := `{"name": "John Smith", "note": "x"}`
		if got := RepairPayload(payload); got != payload {
			t.Errorf("valid string payload was modified: %q", got)
		}
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		if got := RepairPayload("  {\"a\": 1}\n"); got != `{"a": 1}` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("multi word bare value stays broken", func(t *testing.T) {
		repaired := RepairPayload(`{name: John Smith}`)

		var data map[string]interface{}
		if err := json.Unmarshal([]byte(repaired), &data); err == nil {
			t.Errorf("expected repair to fail for multi-word bare value, got %q", repaired)
		}
	})
}
