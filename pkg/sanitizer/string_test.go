package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  John Deere 5050D  ",
			want:  "John Deere 5050D",
		},
		{
			name:  "multiple spaces between words",
			input: "John    Deere",
			want:  "John Deere",
		},
		{
			name:  "tabs and newlines",
			input: "John\t\nDeere",
			want:  "John Deere",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Mahindra & Mahindra™ ",
			want:  "Mahindra & Mahindra™",
		},
		{
			name:  "hindi characters",
			input: " महिंद्रा ट्रैक्टर ",
			want:  "महिंद्रा ट्रैक्टर",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "GPS Navigation",
			want:  "gps navigation",
		},
		{
			name:  "trims and lowercases",
			input: "  AC Cabin  ",
			want:  "ac cabin",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLabel(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
