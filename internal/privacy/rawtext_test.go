package privacy

import (
	"strings"
	"testing"
)

func TestDetectRawPII(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"phone", `{"contact": 9876543210`, true},
		{"email", `broken payload john@example.com`, true},
		{"passport", `doc A1234567 attached`, true},
		{"aadhar grouped", `id 1234 5678 9012 end`, true},
		{"clean text", `{"note": just some text`, false},
		{"nine digits", `ref 987654321 end`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DetectRawPII(tt.raw); got != tt.want {
				t.Errorf("DetectRawPII(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRedactRawText(t *testing.T) {
	d := newTestDetector()

	t.Run("phone keeps partial mask", func(t *testing.T) {
		got := d.RedactRawText(`call 9876543210 now`)
		if got != `call 98XXXXXX10 now` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("aadhar keeps partial mask", func(t *testing.T) {
		got := d.RedactRawText(`id 1234 5678 9012 end`)
		if !strings.Contains(got, "12XXXXXXXX12") {
			t.Errorf("got %q", got)
		}
		if strings.Contains(got, "1234 5678 9012") {
			t.Errorf("raw aadhar leaked: %q", got)
		}
	})

	t.Run("email becomes token", func(t *testing.T) {
		got := d.RedactRawText(`mail john@example.com now`)
		if got != `mail `+RedactionToken+` now` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("passport becomes token", func(t *testing.T) {
		got := d.RedactRawText(`doc A1234567 attached`)
		if got != `doc `+RedactionToken+` attached` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("multiple kinds in one payload", func(t *testing.T) {
		got := d.RedactRawText(`{"contact": 9876543210, "mail": john@example.com`)
		if strings.Contains(got, "9876543210") {
			t.Errorf("raw phone leaked: %q", got)
		}
		if strings.Contains(got, "john@example.com") {
			t.Errorf("raw email leaked: %q", got)
		}
		if !strings.Contains(got, "98XXXXXX10") {
			t.Errorf("phone mask missing: %q", got)
		}
		if !strings.Contains(got, RedactionToken) {
			t.Errorf("token missing: %q", got)
		}
	})

	t.Run("repeated phone is masked everywhere", func(t *testing.T) {
		got := d.RedactRawText(`9876543210 and again 9876543210`)
		if strings.Contains(got, "9876543210") {
			t.Errorf("raw phone leaked: %q", got)
		}
	})

	t.Run("clean text unchanged", func(t *testing.T) {
		raw := `nothing sensitive here`
		if got := d.RedactRawText(raw); got != raw {
			t.Errorf("got %q", got)
		}
	})
}
