package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "indian mobile with country code",
			input: "+91 98765 43210",
			want:  "+919876543210",
		},
		{
			name:  "indian mobile without country code",
			input: "9876543210",
			want:  "+919876543210",
		},
		{
			name:  "us number",
			input: "+1 212 555 0123",
			want:  "+12125550123",
		},
		{
			name:  "garbage",
			input: "not-a-phone",
			want:  "",
		},
		{
			name:  "too short",
			input: "12345",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
