package privacy

import "testing"

func TestMaskValue(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"phone keeps ends", "phone", "9876543210", "98XXXXXX10"},
		{"phone by pattern", "contact", "9876543210", "98XXXXXX10"},
		{"aadhar grouped", "aadhar", "1234 5678 9012", "12XXXXXXXX12"},
		{"aadhar dashed", "aadhar", "1234-5678-9012", "12XXXXXXXX12"},
		{"aadhar contiguous", "aadhar", "123456789012", "12XXXXXXXX12"},
		{"aadhar wrong digit count", "aadhar", "12345", RedactionToken},
		{"full name", "name", "John Smith", "JXXX SXXXX"},
		{"first name", "first_name", "John", "JXXX"},
		{"single char name token", "name", "J Smith", "X SXXXX"},
		{"email keeps domain", "email", "john.doe@example.com", "jXXXXXXX@example.com"},
		{"email single char local", "email", "j@example.com", "X@example.com"},
		{"email without at sign", "email", "not-an-email", RedactionToken},
		{"passport gets token", "passport", "A1234567", RedactionToken},
		{"address gets token", "address", "12 MG Road, Bangalore", RedactionToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.MaskValue(tt.field, tt.value); got != tt.want {
				t.Errorf("MaskValue(%q, %q) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestMaskKeepEnds(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9876543210", "98XXXXXX10"},
		{"123456", "12XX56"},
		{"1234", "1234"},
		{"12345", "12X45"},
		{"123", "XXX"},
		{"1", "X"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := maskKeepEnds(tt.in); got != tt.want {
			t.Errorf("maskKeepEnds(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripNonDigits(t *testing.T) {
	if got := stripNonDigits("12-34 ab56"); got != "123456" {
		t.Errorf("stripNonDigits = %q", got)
	}
}
